package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Lists recent trainer runs recorded in training_samples.
func main() {
	limit := flag.Int("limit", 10, "runs to list")
	flag.Parse()

	chURL := os.Getenv("PREDICTOR_CLICKHOUSE_URL")
	if chURL == "" {
		chURL = "clickhouse://localhost:9000/predictor"
	}

	opts, err := clickhouse.ParseDSN(chURL)
	if err != nil {
		log.Fatalf("Failed to parse DSN: %v", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open connection: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	rows, err := conn.Query(ctx, `
		SELECT
			run_id,
			count() AS samples,
			uniqExact(match_id) AS matches,
			avg(goals) AS avg_goals,
			max(built_at) AS built_at
		FROM training_samples
		GROUP BY run_id
		ORDER BY built_at DESC
		LIMIT ?
	`, *limit)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			runID            string
			samples, matches uint64
			avgGoals         float64
			builtAt          time.Time
		)
		if err := rows.Scan(&runID, &samples, &matches, &avgGoals, &builtAt); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("%s  %s  matches=%d samples=%d avg_goals=%.2f\n",
			builtAt.Format(time.RFC3339), runID, matches, samples, avgGoals)
	}
	if err := rows.Err(); err != nil {
		log.Fatalf("Rows failed: %v", err)
	}
}
