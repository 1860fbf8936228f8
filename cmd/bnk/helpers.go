package main

import (
	"encoding/json"
	"io"

	"github.com/philvuai/bnk/internal/config"
	"github.com/philvuai/bnk/internal/storage"
)

// openStorage opens and migrates the configured database.
func openStorage() (*storage.SQLiteStorage, error) {
	cfg := config.LoadServerConfig()
	return storage.NewSQLiteStorage(cfg.DBPath)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
