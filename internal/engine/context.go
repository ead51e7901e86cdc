package engine

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
	"github.com/craftlore/craftlore-go/internal/codec"
	"github.com/craftlore/craftlore-go/internal/model"
	"github.com/craftlore/craftlore-go/internal/state"
)

// Payload is the decoded transaction payload.
type Payload struct {
	Action    string         `json:"action"`
	Timestamp string         `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

// Shared is the typed scratch space listeners hand each other during
// one dispatch. Earlier listeners populate slots; later listeners of
// the same chain consume them without re-reading state. Each slot names
// one role an entity plays in the event.
type Shared struct {
	Entity        model.Entity
	EntityAddress addressing.Address

	Owner        model.Account
	OwnerAddress addressing.Address

	Assignee        model.Account
	AssigneeAddress addressing.Address

	Admin        *model.AdminAccount
	AdminAddress addressing.Address

	Signer model.Account

	Batch        *model.ProductBatch
	BatchAddress addressing.Address
	RawMaterial  *model.RawMaterial

	Holder        model.Entity
	HolderAddress addressing.Address

	Recipient model.Account
	OldOwner  model.Account
	Assets    []model.Asset
	Products  []*model.Product
}

// EventContext is the per-transaction mutable context shared by every
// listener dispatched for that transaction. It lives for exactly one
// dispatch and is never persisted.
type EventContext struct {
	EventType       EventType
	Payload         Payload
	SignerPublicKey string
	Signature       string
	Timestamp       string
	Shared          Shared

	provider state.Provider
}

// NewEventContext builds the context for one transaction.
func NewEventContext(et EventType, payload Payload, signer, signature string, provider state.Provider) *EventContext {
	return &EventContext{
		EventType:       et,
		Payload:         payload,
		SignerPublicKey: signer,
		Signature:       signature,
		Timestamp:       payload.Timestamp,
		provider:        provider,
	}
}

// Fields returns the payload's fields mapping, never nil.
func (ev *EventContext) Fields() map[string]any {
	if ev.Payload.Fields == nil {
		ev.Payload.Fields = map[string]any{}
	}
	return ev.Payload.Fields
}

// StringField extracts a string field from the payload.
func (ev *EventContext) StringField(name string) (string, bool) {
	v, ok := ev.Fields()[name].(string)
	return v, ok && v != ""
}

// GetAccount resolves an account by public key, failing with
// NotFoundError when the address holds no state.
func (ev *EventContext) GetAccount(ctx context.Context, publicKey string) (model.Account, addressing.Address, error) {
	addr := addressing.Account(publicKey)
	entries, err := ev.provider.Read(ctx, []addressing.Address{addr})
	if err != nil {
		return nil, "", err
	}
	data, ok := entries[addr]
	if !ok {
		return nil, "", &NotFoundError{Kind: "account", ID: publicKey}
	}
	account, err := model.DecodeAccount(data)
	if err != nil {
		return nil, "", err
	}
	return account, addr, nil
}

// GetAsset resolves an asset by uid. The uid alone does not determine
// the address prefix, so all candidate addresses are read in one batch.
func (ev *EventContext) GetAsset(ctx context.Context, uid string) (model.Asset, addressing.Address, error) {
	candidates := addressing.AssetCandidates(uid)
	entries, err := ev.provider.Read(ctx, candidates)
	if err != nil {
		return nil, "", err
	}
	for _, addr := range candidates {
		data, ok := entries[addr]
		if !ok {
			continue
		}
		asset, err := model.DecodeAsset(data)
		if err != nil {
			return nil, "", err
		}
		return asset, addr, nil
	}
	return nil, "", &NotFoundError{Kind: "asset", ID: uid}
}

// HasState reports whether an address holds data.
func (ev *EventContext) HasState(ctx context.Context, addr addressing.Address) (bool, error) {
	entries, err := ev.provider.Read(ctx, []addressing.Address{addr})
	if err != nil {
		return false, err
	}
	_, ok := entries[addr]
	return ok, nil
}

// SetState stages a canonical write of one record.
func (ev *EventContext) SetState(ctx context.Context, addr addressing.Address, record any) error {
	data, err := codec.Marshal(record)
	if err != nil {
		return err
	}
	return ev.provider.Write(ctx, map[addressing.Address][]byte{addr: data})
}

// SetStates stages canonical writes of several records at once.
func (ev *EventContext) SetStates(ctx context.Context, records map[addressing.Address]any) error {
	entries := make(map[addressing.Address][]byte, len(records))
	for addr, record := range records {
		data, err := codec.Marshal(record)
		if err != nil {
			return err
		}
		entries[addr] = data
	}
	return ev.provider.Write(ctx, entries)
}

// NewHistoryEntry stamps a history line for this transaction. Source
// names the listener writing the entry; targets name the entities the
// entry concerns.
func (ev *EventContext) NewHistoryEntry(source string, targets ...string) model.HistoryEntry {
	return model.HistoryEntry{
		Source:      source,
		Event:       string(ev.EventType),
		Actor:       ev.SignerPublicKey,
		Targets:     targets,
		Transaction: ev.Signature,
		Timestamp:   ev.Timestamp,
	}
}
