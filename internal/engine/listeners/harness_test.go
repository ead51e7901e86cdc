package listeners

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/config"
	"github.com/craftlore/craftlore-go/internal/engine"
	"github.com/craftlore/craftlore-go/internal/model"
	"github.com/craftlore/craftlore-go/internal/state"
)

const testTimestamp = "2026-08-25T10:00:00Z"

// Well-formed uncompressed-free hex-ish signer keys. Account keys never
// contain hyphens; asset uids always do.
const (
	keySupplier = "02a1supplier"
	keyArtisan  = "02a2artisan"
	keyArtisan2 = "02a3artisan2"
	keyBuyer    = "02a4buyer"
	keyAdmin    = "02a5admin"
	keyAdmin2   = "02a6admin2"
)

// harness runs transactions against a fresh engine wired exactly like
// production: full listener inventory, default policy, in-memory store.
type harness struct {
	t       *testing.T
	store   *state.Memory
	handler *engine.Handler
	seq     int
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	manager := engine.NewManager()
	RegisterAll(manager, config.Default())

	return &harness{
		t:       t,
		store:   state.NewMemory(),
		handler: engine.NewHandler(manager),
	}
}

// apply submits one transaction and returns the dispatch error, nil on
// commit.
func (h *harness) apply(signer, action string, fields map[string]any) error {
	h.t.Helper()
	h.seq++

	payload, err := json.Marshal(map[string]any{
		"action":    action,
		"timestamp": testTimestamp,
		"fields":    fields,
	})
	require.NoError(h.t, err)

	tx := engine.Transaction{
		Payload:         payload,
		SignerPublicKey: signer,
		Signature:       fmt.Sprintf("sig-%d", h.seq),
	}
	return h.store.Apply(context.Background(), func(provider state.Provider) error {
		_, err := h.handler.Apply(context.Background(), tx, provider)
		return err
	})
}

func (h *harness) mustApply(signer, action string, fields map[string]any) {
	h.t.Helper()
	require.NoError(h.t, h.apply(signer, action, fields))
}

// account reads a committed account record.
func (h *harness) account(publicKey string) model.Account {
	h.t.Helper()
	data, ok := h.store.Get(addressing.Account(publicKey))
	require.True(h.t, ok, "account %s not in state", publicKey)
	account, err := model.DecodeAccount(data)
	require.NoError(h.t, err)
	return account
}

// asset reads a committed asset record by uid and kind.
func (h *harness) asset(uid, kind string) model.Asset {
	h.t.Helper()
	data, ok := h.store.Get(addressing.Asset(uid, kind))
	require.True(h.t, ok, "asset %s/%s not in state", kind, uid)
	asset, err := model.DecodeAsset(data)
	require.NoError(h.t, err)
	return asset
}

func (h *harness) hasAccount(publicKey string) bool {
	_, ok := h.store.Get(addressing.Account(publicKey))
	return ok
}

func (h *harness) hasAsset(uid, kind string) bool {
	_, ok := h.store.Get(addressing.Asset(uid, kind))
	return ok
}

// createAccount is shorthand for the account creation transaction.
func (h *harness) createAccount(signer, accountType, email string) {
	h.t.Helper()
	h.mustApply(signer, string(engine.AccountCreated), map[string]any{
		"account_type": accountType,
		"email":        email,
	})
}

// standardAccounts seeds the supplier/artisan/buyer trio most scenarios
// start from.
func (h *harness) standardAccounts() {
	h.t.Helper()
	h.createAccount(keySupplier, "supplier", "supplier@example.com")
	h.createAccount(keyArtisan, "artisan", "artisan@example.com")
	h.createAccount(keyBuyer, "buyer", "buyer@example.com")
}
