package main

import (
	"fmt"
	"log"
	"os"

	"github.com/Madhavi-Gurav/BookSwap/internal/server"
)

func main() {
	dbPath := os.Getenv("BS_DB_PATH")
	if dbPath == "" {
		dbPath = "./data/bookswap.db"
	}

	db, err := server.OpenDB(dbPath)
	if err != nil {
		log.Fatalf("OpenDB failed: %v", err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' ORDER BY name;`)
	if err != nil {
		log.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	fmt.Println("Tables:")
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		fmt.Println(" -", name)
	}

	for _, table := range []string{"users", "books", "swap_requests"} {
		var n int
		_ = db.QueryRow(`SELECT COUNT(*) FROM ` + table + `;`).Scan(&n)
		fmt.Printf("%s: %d\n", table, n)
	}

	var pending int
	_ = db.QueryRow(`SELECT COUNT(*) FROM swap_requests WHERE status='pending';`).Scan(&pending)
	fmt.Println("pending swaps:", pending)
}
