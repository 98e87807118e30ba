package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Madhavi-Gurav/BookSwap/internal/server"
	"github.com/Madhavi-Gurav/BookSwap/internal/shared"
)

func main() {
	cfg := shared.LoadServerConfig()

	// Ensure DB directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "." && dbDir != "" {
		if err := os.MkdirAll(dbDir, 0700); err != nil {
			log.Fatalf("failed to create db dir %s: %v", dbDir, err)
		}
	}

	db, err := server.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open db %s: %v", cfg.DBPath, err)
	}

	store := server.NewSQLiteStore(db)

	if cfg.AdminEmail != "" {
		u, err := store.EnsureAdmin(cfg.AdminEmail)
		if err != nil {
			log.Fatalf("admin seed failed: %v", err)
		}
		log.Printf("admin user: %s (%s)", u.Email, u.ID)
	}

	api := &server.API{
		Store:      store,
		AdminToken: cfg.AdminToken,
	}
	mux := server.NewMux(api, cfg.WebDir)

	log.Printf("bookswap-server listening on %s", cfg.Addr)
	log.Printf("db: %s", cfg.DBPath)
	log.Printf("admin token: via BS_ADMIN_TOKEN")

	log.Fatal(http.ListenAndServe(cfg.Addr, mux))
}
