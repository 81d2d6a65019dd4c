package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"path"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/fixturecast/predictor-api/internal/bootstrap"
	"github.com/fixturecast/predictor-api/internal/config"
	"github.com/fixturecast/predictor-api/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	for _, file := range migrationFiles("postgres") {
		log.Printf("Running postgres migration: %s", path.Base(file))
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", file, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			log.Fatalf("Failed to execute migration %s: %v", file, err)
		}
	}

	ch, err := bootstrap.OpenClickHouse(ctx, cfg.ClickHouseURL)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	if ch == nil {
		log.Println("ClickHouse not configured, skipping analytics schema")
		return
	}
	defer ch.Close()

	// ClickHouse runs one statement per Exec.
	for _, file := range migrationFiles("clickhouse") {
		log.Printf("Running clickhouse migration: %s", path.Base(file))
		content, err := fs.ReadFile(migrations.FS, file)
		if err != nil {
			log.Fatalf("Failed to read migration file %s: %v", file, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if err := ch.Exec(ctx, stmt); err != nil {
				log.Fatalf("Failed to execute migration %s: %v", file, err)
			}
		}
	}

	log.Println("All migrations completed successfully")
}

func migrationFiles(dir string) []string {
	files, err := fs.Glob(migrations.FS, dir+"/*.sql")
	if err != nil {
		log.Fatalf("Failed to list %s migrations: %v", dir, err)
	}
	return files
}

func splitStatements(content string) []string {
	var out []string
	for _, stmt := range strings.Split(content, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
