package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	db "dbexport/database"
)

type TableSummary struct {
	RowCount    int64       `json:"row_count"`
	ColumnCount int         `json:"column_count"`
	Columns     []db.Column `json:"columns"`
}

// Summary aggregates per-table metadata for one export run. It is derived
// entirely from the collected TableInfos; building it runs no queries.
type Summary struct {
	ExportTimestamp string                  `json:"export_timestamp"`
	Database        string                  `json:"database"`
	TotalTables     int                     `json:"total_tables"`
	TotalRows       int64                   `json:"total_rows"`
	Tables          map[string]TableSummary `json:"tables"`

	tableOrder []string
}

func BuildSummary(database string, tables []*db.TableInfo) *Summary {
	summary := &Summary{
		ExportTimestamp: time.Now().Format(time.RFC3339),
		Database:        database,
		TotalTables:     len(tables),
		Tables:          make(map[string]TableSummary, len(tables)),
	}

	for _, info := range tables {
		summary.Tables[info.Name] = TableSummary{
			RowCount:    info.RowCount,
			ColumnCount: len(info.Columns),
			Columns:     info.Columns,
		}
		summary.TotalRows += info.RowCount
		summary.tableOrder = append(summary.tableOrder, info.Name)
	}

	return summary
}

// WriteJSON writes the machine-readable summary document.
func (s *Summary) WriteJSON(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("converting summary to JSON: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing summary file: %v", err)
	}
	return nil
}

// WriteText writes the human-readable report, one block per table in
// inspection order.
func (s *Summary) WriteText(path string) error {
	var b strings.Builder

	b.WriteString("Database Export Summary\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Export Time: %s\n", s.ExportTimestamp)
	fmt.Fprintf(&b, "Database: %s\n", s.Database)
	fmt.Fprintf(&b, "Total Tables: %d\n", s.TotalTables)
	fmt.Fprintf(&b, "Total Rows: %d\n\n", s.TotalRows)

	for _, name := range s.tableOrder {
		table := s.Tables[name]
		fmt.Fprintf(&b, "Table: %s\n", name)
		fmt.Fprintf(&b, "  Rows: %d\n", table.RowCount)
		fmt.Fprintf(&b, "  Columns: %d\n", table.ColumnCount)
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "    - %s (%s)\n", col.Name, col.Type)
		}
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing summary report: %v", err)
	}
	return nil
}
