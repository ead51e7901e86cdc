// Package listeners holds the concrete business-rule units the engine
// dispatches: creators build entities from payloads, updaters progress
// entity state machines, validators run late in each chain and check
// the post-update context. RegisterAll wires the full inventory into a
// Manager in a fixed order so tie-broken priorities stay deterministic.
package listeners

import "github.com/craftlore/craftlore-go/internal/engine"

// base supplies the registration surface shared by every listener.
type base struct {
	name       string
	priorities map[engine.EventType]int
}

func (b base) Name() string { return b.name }

func (b base) Priorities() map[engine.EventType]int { return b.priorities }
