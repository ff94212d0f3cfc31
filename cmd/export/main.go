// CLI tool to dump the persisted tracker state as a single JSON document on
// stdout — useful for backups and for moving state between the file and
// Postgres backends. Reads DB_URL / DATA_DIR the same way the server does.
// Usage: go run ./cmd/export
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

var stateKeys = []string{"profile", "today_ledger", "weight_series", "history"}

func main() {
	godotenv.Load()

	var err error
	export := map[string]json.RawMessage{}
	if dbURL := os.Getenv("DB_URL"); dbURL != "" {
		err = readFromPostgres(dbURL, export)
	} else {
		err = readFromFiles(export)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func readFromPostgres(dbURL string, export map[string]json.RawMessage) error {
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	for _, key := range stateKeys {
		var raw []byte
		err := conn.QueryRow(ctx,
			"SELECT value FROM tracker_state WHERE key = $1", key).Scan(&raw)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		export[key] = raw
	}
	return nil
}

func readFromFiles(export map[string]json.RawMessage) error {
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "data"
	}

	for _, key := range stateKeys {
		raw, err := os.ReadFile(filepath.Join(dir, key+".json"))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", key, err)
		}
		export[key] = raw
	}
	return nil
}
