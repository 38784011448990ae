package policy

// Indexes holds DDL that struct tags cannot express.
var Indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_approval_policies_one_active ON approval_policies (organization_id) WHERE is_active`,
}

func Models() []any {
	return []any{&Policy{}}
}
