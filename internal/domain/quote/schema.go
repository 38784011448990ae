package quote

// Indexes backs the one-approved-quote-per-case rule at the storage level.
var Indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_quotes_one_approved_per_case ON quotes (case_id) WHERE status = 'approved'`,
}

func Models() []any {
	return []any{&Quote{}, &LineItem{}, &CounterProposal{}}
}
