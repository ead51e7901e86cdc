package engine

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/codec"
	"github.com/craftlore/craftlore-go/internal/state"
)

// Transaction is one signed, atomic state-change request. The transport
// has already verified the signature; the engine only consumes the
// payload and the signer identity.
type Transaction struct {
	Payload         []byte
	SignerPublicKey string
	Signature       string
}

// Handler is the transaction entry point: it resolves the event type
// from the payload's declared action and dispatches the listener chain.
type Handler struct {
	manager *Manager
}

// NewHandler wraps a fully registered Manager.
func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager}
}

// Apply processes one transaction against the given state scope. The
// provider must be a transaction scope whose owner commits on nil error
// and discards on failure.
func (h *Handler) Apply(ctx context.Context, tx Transaction, provider state.Provider) (*EventContext, error) {
	var payload Payload
	if err := codec.Unmarshal(tx.Payload, &payload); err != nil {
		return nil, err
	}
	if payload.Action == "" {
		return nil, Validationf("transaction payload must declare an action")
	}

	ev := NewEventContext(EventType(payload.Action), payload, tx.SignerPublicKey, tx.Signature, provider)
	if err := h.manager.Dispatch(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
