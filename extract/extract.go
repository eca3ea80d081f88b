package extract

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	db "dbexport/database"
	"dbexport/internal/utils"
	"dbexport/report"
)

// Layout is the timestamped directory tree one export run writes into.
type Layout struct {
	Root       string
	CSVDir     string
	JSONDir    string
	SummaryDir string
	RawSQLDir  string
}

// NewLayout creates a fresh export directory tree under root. The top-level
// name is timestamp-qualified; if it already exists (two runs inside one
// second) a numeric suffix is probed so no prior run is ever overwritten.
func NewLayout(root string, now time.Time) (*Layout, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating output root: %v", err)
	}

	base := "database_export_" + now.Format("20060102_150405")
	var dir string
	for i := 1; ; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		dir = filepath.Join(root, name)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating export directory: %v", err)
		}
	}

	layout := &Layout{
		Root:       dir,
		CSVDir:     filepath.Join(dir, "csv"),
		JSONDir:    filepath.Join(dir, "json"),
		SummaryDir: filepath.Join(dir, "summary"),
		RawSQLDir:  filepath.Join(dir, "raw_sql"),
	}
	for _, sub := range []string{layout.CSVDir, layout.JSONDir, layout.SummaryDir, layout.RawSQLDir} {
		if err := os.Mkdir(sub, 0755); err != nil {
			return nil, fmt.Errorf("creating export subdirectory: %v", err)
		}
	}

	return layout, nil
}

// ExportResult records the outcome of one table's CSV and JSON export
// attempts. Failures are collected here instead of aborting the run.
type ExportResult struct {
	Table   string
	Rows    int
	CSVErr  error
	JSONErr error
}

type Options struct {
	Database     string
	OutputRoot   string
	JSONRowLimit int
}

// Run performs the full extraction: directory tree, schema inspection,
// per-table CSV/JSON exports, summary reports, sample queries and a final
// listing of generated files. Per-table export failures are logged and
// skipped; everything else is fatal.
func Run(mgr db.Extractor, opts Options) error {
	fmt.Println("Starting database export")
	fmt.Println(strings.Repeat("-", 50))

	layout, err := NewLayout(opts.OutputRoot, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("[INFO] Created export directory: %s\n", layout.Root)

	tables, err := mgr.ListTables()
	if err != nil {
		return fmt.Errorf("listing tables: %v", err)
	}
	fmt.Printf("[INFO] Found %d tables: %s\n", len(tables), strings.Join(tables, ", "))

	infos := make([]*db.TableInfo, 0, len(tables))
	for _, name := range tables {
		info, err := mgr.DescribeTable(name)
		if err != nil {
			return fmt.Errorf("describing table %s: %v", name, err)
		}
		infos = append(infos, info)
		fmt.Printf("[TABLE] %s: %d rows, %d columns\n", name, info.RowCount, len(info.Columns))
	}

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("Exporting Data...")
	fmt.Println(strings.Repeat("=", 50))

	ExportTables(mgr, layout, tables, opts.JSONRowLimit)

	summary := report.BuildSummary(opts.Database, infos)
	if err := summary.WriteJSON(filepath.Join(layout.SummaryDir, "database_summary.json")); err != nil {
		return err
	}
	if err := summary.WriteText(filepath.Join(layout.SummaryDir, "database_summary.txt")); err != nil {
		return err
	}
	fmt.Println("[SUMMARY] Generated summary reports")

	resultsPath := filepath.Join(layout.SummaryDir, "sample_queries_results.txt")
	if err := report.WriteQueryResults(resultsPath, mgr); err != nil {
		return err
	}
	fmt.Println("[QUERY] Generated sample query results")

	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("[SUCCESS] Database export completed!")
	fmt.Printf("[INFO] Results saved to: %s\n", layout.Root)
	fmt.Println(strings.Repeat("=", 50))

	fmt.Println("\nGenerated files:")
	if err := WriteTree(os.Stdout, layout.Root); err != nil {
		return fmt.Errorf("listing generated files: %v", err)
	}

	return nil
}

// ExportTables exports each table to CSV and then JSON. Every table gets
// exactly one attempt of each; a failure is logged as a warning and never
// blocks the other exports.
func ExportTables(mgr db.Extractor, layout *Layout, tables []string, jsonLimit int) []ExportResult {
	results := make([]ExportResult, 0, len(tables))

	for _, name := range tables {
		fmt.Printf("\nProcessing table: %s\n", name)
		result := ExportResult{Table: name}

		csvPath := filepath.Join(layout.CSVDir, name+".csv")
		rows, err := mgr.ExportTableCSV(name, csvPath)
		if err != nil {
			result.CSVErr = err
			fmt.Printf("[WARN] Failed to export %s to CSV: %v\n", name, err)
		} else {
			result.Rows = rows
			fmt.Printf("[CSV] Exported %s (%d rows)\n", name, rows)
		}

		jsonPath := filepath.Join(layout.JSONDir, name+".json")
		records, err := mgr.ExportTableJSON(name, jsonPath, jsonLimit)
		if err != nil {
			result.JSONErr = err
			fmt.Printf("[WARN] Failed to export %s to JSON: %v\n", name, err)
		} else {
			fmt.Printf("[JSON] Exported %s (%d records)\n", name, records)
		}

		results = append(results, result)
	}

	return results
}

// WriteTree prints the export tree recursively with human-readable file sizes.
func WriteTree(w io.Writer, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		depth := 0
		if rel != "." {
			depth = strings.Count(rel, string(filepath.Separator)) + 1
		}
		indent := strings.Repeat("  ", depth)

		if d.IsDir() {
			fmt.Fprintf(w, "%s%s/\n", indent, d.Name())
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s%s (%s)\n", indent, d.Name(), utils.HumanSize(info.Size()))
		return nil
	})
}
