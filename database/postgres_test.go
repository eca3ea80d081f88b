package db

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

func TestFormatValue(t *testing.T) {
	ts := time.Date(2025, 8, 31, 17, 10, 24, 0, time.UTC)

	tests := []struct {
		in   interface{}
		want string
	}{
		{nil, ""},
		{[]byte("hello"), "hello"},
		{ts, "2025-08-31T17:10:24Z"},
		{int64(42), "42"},
		{3.5, "3.5"},
		{true, "true"},
	}

	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJSONValue(t *testing.T) {
	ts := time.Date(2025, 8, 31, 17, 10, 24, 500000000, time.UTC)

	if got := jsonValue(ts); got != "2025-08-31T17:10:24.5Z" {
		t.Errorf("expected ISO-8601 timestamp, got %v", got)
	}
	if got := jsonValue([]byte("raw")); got != "raw" {
		t.Errorf("expected byte slice converted to string, got %v", got)
	}
	if got := jsonValue(nil); got != nil {
		t.Errorf("expected nil to pass through, got %v", got)
	}
	if got := jsonValue(int64(7)); got != int64(7) {
		t.Errorf("expected integer to pass through, got %v", got)
	}
}

// setupTestDB connects to the database named by DBEXPORT_TEST_DSN and
// creates a small fixture schema. Tests that need a live database are
// skipped when the variable is unset.
func setupTestDB(t *testing.T) *PostgresManager {
	dsn := os.Getenv("DBEXPORT_TEST_DSN")
	if dsn == "" {
		t.Skip("DBEXPORT_TEST_DSN not set; skipping integration test")
	}

	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := conn.Ping(); err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = conn.Exec(`
		DROP SCHEMA public CASCADE;
		CREATE SCHEMA public;

		CREATE TABLE sessions (
			session_id SERIAL PRIMARY KEY,
			player_name TEXT NOT NULL,
			start_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			end_time TIMESTAMP
		);

		CREATE TABLE game_ticks (
			id SERIAL PRIMARY KEY,
			session_id INTEGER REFERENCES sessions(session_id),
			tick_number INTEGER NOT NULL,
			processing_time_ms DOUBLE PRECISION
		);

		INSERT INTO sessions (player_name) VALUES
			('Player One'),
			('Player Two');

		INSERT INTO game_ticks (session_id, tick_number, processing_time_ms) VALUES
			(1, 1, 12.5),
			(1, 2, 9.75),
			(2, 1, 20.0);
	`)
	if err != nil {
		conn.Close()
		t.Fatalf("Failed to create test tables: %v", err)
	}

	conn.Close()

	mgr := &PostgresManager{}
	if err := mgr.ConnectWithDSN(dsn); err != nil {
		t.Fatalf("ConnectWithDSN failed: %v", err)
	}
	return mgr
}

func TestPostgresIntegration(t *testing.T) {
	mgr := setupTestDB(t)
	defer mgr.Close()

	tables, err := mgr.ListTables()
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 2 || tables[0] != "game_ticks" || tables[1] != "sessions" {
		t.Fatalf("expected [game_ticks sessions], got %v", tables)
	}

	info, err := mgr.DescribeTable("sessions")
	if err != nil {
		t.Fatalf("DescribeTable failed: %v", err)
	}
	if info.RowCount != 2 {
		t.Errorf("expected 2 rows in sessions, got %d", info.RowCount)
	}
	if len(info.Columns) != 4 {
		t.Errorf("expected 4 columns in sessions, got %d", len(info.Columns))
	}
	if info.Columns[0].Name != "session_id" {
		t.Errorf("expected first column session_id, got %s", info.Columns[0].Name)
	}
	if info.Columns[1].Nullable {
		t.Error("expected player_name to be NOT NULL")
	}

	dir := t.TempDir()

	csvPath := filepath.Join(dir, "game_ticks.csv")
	rows, err := mgr.ExportTableCSV("game_ticks", csvPath)
	if err != nil {
		t.Fatalf("ExportTableCSV failed: %v", err)
	}
	if rows != 3 {
		t.Errorf("expected 3 rows exported, got %d", rows)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("reading exported CSV: %v", err)
	}
	if len(records) != 4 { // header + 3 rows
		t.Errorf("expected 4 CSV records, got %d", len(records))
	}
	if records[0][0] != "id" {
		t.Errorf("expected header to start with id, got %s", records[0][0])
	}

	jsonPath := filepath.Join(dir, "game_ticks.json")
	count, err := mgr.ExportTableJSON("game_ticks", jsonPath, 2)
	if err != nil {
		t.Fatalf("ExportTableJSON failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected JSON export capped at 2 records, got %d", count)
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("exported JSON does not parse: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("expected 2 JSON records, got %d", len(decoded))
	}

	cols, results, err := mgr.RunQuery("SELECT session_id, COUNT(*) AS ticks FROM game_ticks GROUP BY session_id ORDER BY session_id")
	if err != nil {
		t.Fatalf("RunQuery failed: %v", err)
	}
	if len(cols) != 2 || cols[1] != "ticks" {
		t.Errorf("unexpected columns: %v", cols)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 result rows, got %d", len(results))
	}
}

func TestExportEmptyTableIntegration(t *testing.T) {
	mgr := setupTestDB(t)
	defer mgr.Close()

	if _, err := mgr.DB.Exec("CREATE TABLE empty_table (id SERIAL PRIMARY KEY, note TEXT)"); err != nil {
		t.Fatalf("creating empty table: %v", err)
	}

	csvPath := filepath.Join(t.TempDir(), "empty_table.csv")
	rows, err := mgr.ExportTableCSV("empty_table", csvPath)
	if err != nil {
		t.Fatalf("ExportTableCSV failed: %v", err)
	}
	if rows != 0 {
		t.Errorf("expected 0 rows, got %d", rows)
	}

	file, err := os.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("expected only a header line, got %d records", len(records))
	}
}

func TestNoConnection(t *testing.T) {
	mgr := &PostgresManager{}

	if _, err := mgr.ListTables(); err == nil {
		t.Error("expected error from ListTables without a connection")
	}
	if _, err := mgr.DescribeTable("sessions"); err == nil {
		t.Error("expected error from DescribeTable without a connection")
	}
	if _, err := mgr.ExportTableCSV("sessions", "out.csv"); err == nil {
		t.Error("expected error from ExportTableCSV without a connection")
	}
	if _, err := mgr.ExportTableJSON("sessions", "out.json", 10); err == nil {
		t.Error("expected error from ExportTableJSON without a connection")
	}
	if _, _, err := mgr.RunQuery("SELECT 1"); err == nil {
		t.Error("expected error from RunQuery without a connection")
	}
	if err := mgr.Close(); err != nil {
		t.Errorf("Close without a connection should be a no-op, got: %v", err)
	}
}
