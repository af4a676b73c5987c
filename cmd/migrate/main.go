package main

import (
	"database/sql"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// Applies migrations/schema.sql to the database from DATABASE_URL (or -dsn).
// The schema is idempotent, so re-running is safe.
func main() {
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "postgres connection string")
	schema := flag.String("schema", "migrations/schema.sql", "path to schema file")
	flag.Parse()

	if *dsn == "" {
		log.Fatal("no database url: set DATABASE_URL or pass -dsn")
	}

	sqlBytes, err := os.ReadFile(*schema)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}

	db, err := sql.Open("postgres", *dsn)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(string(sqlBytes)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")
}
