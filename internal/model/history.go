package model

// FieldChange records the before/after values of one edited field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// HistoryEntry is one immutable line of an entity's append-only history.
// Exactly one listener writes each entry; ordering within an entity is
// insertion order and matches transaction apply order.
type HistoryEntry struct {
	Source      string                 `json:"source"`
	Event       string                 `json:"event"`
	Actor       string                 `json:"actor"`
	Targets     []string               `json:"targets"`
	Transaction string                 `json:"transaction"`
	Timestamp   string                 `json:"timestamp"`
	Edits       map[string]FieldChange `json:"edits,omitempty"`
}

// AdminAction is one line of an admin account's action ledger.
type AdminAction struct {
	Details     string `json:"details"`
	Transaction string `json:"transaction"`
	Timestamp   string `json:"timestamp"`
}
