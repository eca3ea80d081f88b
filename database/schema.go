package db

type Column struct {
    Name     string `json:"name"`
    Type     string `json:"type"`     // Declared database type (e.g. text, integer, timestamp)
    Nullable bool   `json:"nullable"`
}

// TableInfo is a read-only snapshot of one table's schema and row count,
// taken once per run. The row count and a later export are not in the same
// transaction snapshot, so they may diverge under concurrent writes.
type TableInfo struct {
    Name     string   `json:"name"`
    Columns  []Column `json:"columns"`
    RowCount int64    `json:"row_count"`
}
