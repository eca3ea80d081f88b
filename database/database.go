package db

// Extractor defines the database operations an export run depends on
type Extractor interface {
	ConnectWithDSN(dsn string) error
	Close() error
	ListTables() ([]string, error)
	DescribeTable(name string) (*TableInfo, error)
	ExportTableCSV(name, path string) (int, error)
	ExportTableJSON(name, path string, limit int) (int, error)
	RunQuery(query string) ([]string, [][]string, error)
}
