package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// QueryRunner executes one query and returns column names plus stringified rows.
type QueryRunner interface {
	RunQuery(query string) ([]string, [][]string, error)
}

type SampleQuery struct {
	Name string
	SQL  string
}

// SampleQueries returns the fixed set of illustrative analytical queries
// run at the end of every export.
func SampleQueries() []SampleQuery {
	return []SampleQuery{
		{
			Name: "sessions_overview",
			SQL: `
				SELECT session_id, player_name, start_time, end_time,
				       EXTRACT(EPOCH FROM (end_time - start_time))/60 as duration_minutes
				FROM sessions
				ORDER BY start_time DESC
				LIMIT 10;
			`,
		},
		{
			Name: "tick_performance",
			SQL: `
				SELECT session_id,
				       AVG(processing_time_ms) as avg_processing_ms,
				       COUNT(*) as tick_count,
				       MIN(processing_time_ms) as min_processing_ms,
				       MAX(processing_time_ms) as max_processing_ms
				FROM game_ticks
				GROUP BY session_id
				ORDER BY avg_processing_ms DESC;
			`,
		},
		{
			Name: "player_locations",
			SQL: `
				SELECT world_x, world_y, plane, COUNT(*) as frequency
				FROM player_location
				GROUP BY world_x, world_y, plane
				ORDER BY frequency DESC
				LIMIT 20;
			`,
		},
		{
			Name: "recent_activity",
			SQL: `
				SELECT gt.session_id, gt.tick_number, gt.timestamp, gt.processing_time_ms,
				       pl.world_x, pl.world_y, pl.plane
				FROM game_ticks gt
				LEFT JOIN player_location pl ON gt.session_id = pl.session_id
				    AND gt.tick_number = pl.tick_number
				ORDER BY gt.timestamp DESC
				LIMIT 100;
			`,
		},
	}
}

// WriteQueryResults runs every sample query and renders its result set as a
// text table under a header showing the literal SQL. Each query fails
// independently: an error is written in place of results and the runner
// moves on to the next query.
func WriteQueryResults(path string, runner QueryRunner) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating results file: %v", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "Database Sample Query Results")
	fmt.Fprintln(file, strings.Repeat("=", 50))
	fmt.Fprintln(file)

	for _, query := range SampleQueries() {
		fmt.Fprintf(file, "Query: %s\n", query.Name)
		fmt.Fprintln(file, strings.Repeat("-", 30))
		fmt.Fprintf(file, "SQL: %s\n\n", strings.TrimSpace(query.SQL))

		columns, rows, err := runner.RunQuery(query.SQL)
		if err != nil {
			fmt.Fprintf(file, "Error executing query: %v\n\n", err)
			continue
		}

		fmt.Fprintf(file, "Results (%d rows):\n", len(rows))

		table := tablewriter.NewWriter(file)
		table.SetHeader(columns)
		table.SetBorder(false)
		table.SetColumnSeparator(" ")
		for _, row := range rows {
			table.Append(row)
		}
		table.Render()

		fmt.Fprintf(file, "\n%s\n\n", strings.Repeat("=", 80))
	}

	return nil
}
