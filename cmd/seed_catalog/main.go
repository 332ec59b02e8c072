package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"digital-library/config"
	"digital-library/library"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	flag.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "SQLite database file to reset")
	flag.IntVar(&cfg.CatalogSize, "size", cfg.CatalogSize, "number of books to generate")
	flag.Int64Var(&cfg.CatalogSeed, "seed", cfg.CatalogSeed, "catalog seed (0 picks one at random)")
	show := flag.Int("show", 10, "number of generated books to print")
	flag.Parse()

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, file := range []string{cfg.SQLitePath, cfg.SQLitePath + "-shm", cfg.SQLitePath + "-wal"} {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	db, err := library.NewDatabase(cfg.SQLitePath)
	if err != nil {
		config.Exitf("Error creating database: %v", err)
	}
	opts := cfg.ManagerOptions()
	opts.Logger = log.New(os.Stderr, "[SEED] ", log.LstdFlags)
	manager, err := library.NewLibraryManager(context.Background(), db, opts)
	if err != nil {
		db.Close()
		config.Exitf("Error seeding library: %v", err)
	}
	defer manager.Close()

	books := manager.Books()
	available := 0
	for _, b := range books {
		if b.Available {
			available++
		}
	}

	fmt.Printf("\nSeed complete!\n")
	fmt.Printf("Accounts: %d (login as %s / %s)\n", len(manager.Accounts()), library.DefaultAdmin.Username, library.DefaultAdmin.Password)
	fmt.Printf("Books: %d (%d available)\n", len(books), available)

	if n := min(*show, len(books)); n > 0 {
		fmt.Printf("\nFirst %d books:\n", n)
		fmt.Printf("%-5s %-35s %-25s %-6s %-12s %-10s\n", "ID", "Title", "Author", "Year", "Genre", "Available")
		fmt.Println(strings.Repeat("-", 100))
		for _, b := range books[:n] {
			fmt.Println(library.PrettyBook(b))
		}
	}
}
