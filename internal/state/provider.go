// Package state defines the key-value interface the engine uses to
// reach durable ledger state, plus an in-memory implementation with the
// same atomic-commit contract the external runtime guarantees: all
// writes of one transaction become visible together, or not at all.
package state

import (
	"context"

	"github.com/craftlore/craftlore-go/internal/addressing"
)

// Provider is the state surface one transaction sees. Reads return only
// the addresses that hold data; absent addresses are omitted from the
// result. Writes are staged within the transaction scope and must be
// committed or discarded as a unit by the owner of the scope.
type Provider interface {
	Read(ctx context.Context, addrs []addressing.Address) (map[addressing.Address][]byte, error)
	Write(ctx context.Context, entries map[addressing.Address][]byte) error
}

// Store owns durable state and hands out transaction scopes. Apply runs
// fn against a scoped Provider and commits its writes iff fn returns
// nil; any error discards every staged write.
type Store interface {
	Apply(ctx context.Context, fn func(Provider) error) error
}
