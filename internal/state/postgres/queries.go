package postgres

// SQL queries for the ledger_state table.
// Schema defined in migrations/001_create_ledger_state_table.up.sql.

const (
	// queryGetEntries batch-reads the addresses one engine lookup
	// probes. Absent addresses simply return no row.
	queryGetEntries = `
		SELECT address, data
		FROM ledger_state
		WHERE address = ANY($1)
	`

	// queryUpsertEntry stages one record write. The engine's canonical
	// encoding makes the write idempotent for identical content.
	queryUpsertEntry = `
		INSERT INTO ledger_state (address, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (address)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`
)
