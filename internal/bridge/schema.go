package bridge

// RequireColumns confirms every required column is present in the header,
// matched exactly (case-sensitive). Returns a SchemaError naming the
// table and all missing columns, or nil.
func RequireColumns(table string, header []string, required ...string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return NewSchemaError(table, missing...)
	}
	return nil
}

// RequireAnyColumn confirms at least one of the aliases for a logical
// column is present. The SchemaError names the logical column so the
// message stays stable across source formats.
func RequireAnyColumn(table string, header []string, logical string, aliases ...string) error {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	for _, alias := range aliases {
		if present[alias] {
			return nil
		}
	}
	return NewSchemaError(table, logical)
}
