package db

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type PostgresManager struct {
	DB *sql.DB
}

func (p *PostgresManager) ConnectWithDSN(dsn string) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	// Ping so bad credentials fail here rather than on the first query
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	p.DB = db
	return nil
}

func (p *PostgresManager) Close() error {
	if p.DB == nil {
		return nil
	}
	return p.DB.Close()
}

// ListTables returns all user table names in the public schema, ordered by name.
func (p *PostgresManager) ListTables() ([]string, error) {
	if p.DB == nil {
		return nil, errors.New("no database connection")
	}

	rows, err := p.DB.Query(`
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		AND table_type = 'BASE TABLE'
		AND table_name NOT LIKE 'pg_%'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %v", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fmt.Errorf("scanning table name: %v", err)
		}
		tables = append(tables, tableName)
	}

	return tables, rows.Err()
}

// DescribeTable returns column metadata in declaration order plus a row
// count. The count is taken with a separate COUNT(*) query.
func (p *PostgresManager) DescribeTable(name string) (*TableInfo, error) {
	if p.DB == nil {
		return nil, errors.New("no database connection")
	}

	rows, err := p.DB.Query(`
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		ORDER BY ordinal_position
	`, name)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %v", err)
	}
	defer rows.Close()

	info := &TableInfo{Name: name}
	for rows.Next() {
		var columnName, dataType, isNullable string
		if err := rows.Scan(&columnName, &dataType, &isNullable); err != nil {
			return nil, fmt.Errorf("scanning column info: %v", err)
		}
		info.Columns = append(info.Columns, Column{
			Name:     columnName,
			Type:     dataType,
			Nullable: isNullable == "YES",
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s", pq.QuoteIdentifier(name))
	if err := p.DB.QueryRow(countSQL).Scan(&info.RowCount); err != nil {
		return nil, fmt.Errorf("counting rows: %v", err)
	}

	return info, nil
}

// ExportTableCSV streams all rows of a table into a CSV file with a header
// row of column names. Returns the number of data rows written.
func (p *PostgresManager) ExportTableCSV(name, path string) (int, error) {
	if p.DB == nil {
		return 0, errors.New("no database connection")
	}

	rows, err := p.DB.Query(fmt.Sprintf("SELECT * FROM %s", pq.QuoteIdentifier(name)))
	if err != nil {
		return 0, fmt.Errorf("querying data: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("reading column names: %v", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("writing CSV header: %v", err)
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	count := 0
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return count, fmt.Errorf("scanning row: %v", err)
		}

		record := make([]string, len(columns))
		for i, val := range values {
			record[i] = formatValue(val)
		}
		if err := writer.Write(record); err != nil {
			return count, fmt.Errorf("writing CSV row: %v", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return count, fmt.Errorf("flushing CSV file: %v", err)
	}
	return count, nil
}

// ExportTableJSON writes at most limit rows as one pretty-printed JSON
// document, each row a mapping from column name to value. Returns the
// number of records written. JSON files are for human inspection, not full
// archival; CSV is the archival path.
func (p *PostgresManager) ExportTableJSON(name, path string, limit int) (int, error) {
	if p.DB == nil {
		return 0, errors.New("no database connection")
	}

	query := fmt.Sprintf("SELECT * FROM %s LIMIT %d", pq.QuoteIdentifier(name), limit)
	rows, err := p.DB.Query(query)
	if err != nil {
		return 0, fmt.Errorf("querying data: %v", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("reading column names: %v", err)
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return 0, fmt.Errorf("scanning row: %v", err)
		}

		record := make(map[string]interface{}, len(columns))
		for i, val := range values {
			record[columns[i]] = jsonValue(val)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("converting rows to JSON: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("writing JSON file: %v", err)
	}

	return len(records), nil
}

// RunQuery executes an arbitrary query and returns the column names plus
// all rows with values stringified the same way as the CSV export.
func (p *PostgresManager) RunQuery(query string) ([]string, [][]string, error) {
	if p.DB == nil {
		return nil, nil, errors.New("no database connection")
	}

	rows, err := p.DB.Query(query)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	values := make([]interface{}, len(columns))
	valuePtrs := make([]interface{}, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	var results [][]string
	for rows.Next() {
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, nil, err
		}
		record := make([]string, len(columns))
		for i, val := range values {
			record[i] = formatValue(val)
		}
		results = append(results, record)
	}

	return columns, results, rows.Err()
}

// formatValue renders a scanned value for CSV or text-table output.
// NULL becomes an empty field; timestamps use ISO-8601.
func formatValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// jsonValue coerces a scanned value into something encoding/json can
// represent: timestamps to ISO-8601 strings, byte slices to strings,
// everything else (nil included) passes through as-is.
func jsonValue(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case []byte:
		return string(x)
	default:
		return v
	}
}
