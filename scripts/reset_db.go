package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
)

func main() {
	only := flag.String("collections", "", "comma-separated collections to clear (default: all)")
	accounts := flag.Bool("accounts", false, "also delete every user except the seeded admin")
	flag.Parse()

	targets, err := selectCollections(*only)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("========================================")
	fmt.Println("   Reset CRM Data")
	fmt.Println("========================================")
	fmt.Println()
	fmt.Println("WARNING: this permanently deletes documents from:")
	for _, c := range targets {
		fmt.Printf("  - %s\n", c)
	}
	if *accounts {
		fmt.Println("  - users (keeping SEED_ADMIN_EMAIL)")
	}
	fmt.Println()
	fmt.Print("Type 'yes' to confirm: ")

	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" {
		fmt.Println("Reset cancelled.")
		return
	}

	godotenv.Load()

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		getEnv("DB_USER", "postgres"), getEnv("DB_PASSWORD", "postgres"),
		getEnv("DB_HOST", "localhost"), getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "pragathi_crm"), getEnv("DB_SSLMODE", "disable"))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v\n", err)
	}
	defer tx.Rollback(ctx)

	// Each delete fires the change trigger, so connected sessions see the
	// lists empty out without reconnecting.
	for _, c := range targets {
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, c)
		if err != nil {
			log.Fatalf("Failed to clear %s: %v\n", c, err)
		}
		fmt.Printf("  cleared %s (%d documents)\n", c, tag.RowsAffected())
	}

	if *accounts {
		admin := getEnv("SEED_ADMIN_EMAIL", "")
		tag, err := tx.Exec(ctx, `DELETE FROM users WHERE LOWER(email) <> LOWER($1)`, admin)
		if err != nil {
			log.Fatalf("Failed to clear users: %v\n", err)
		}
		fmt.Printf("  removed %d users\n", tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit transaction: %v\n", err)
	}
	fmt.Println()
	fmt.Println("Reset complete.")
}

// selectCollections validates a -collections list against the known
// business collections.
func selectCollections(list string) ([]string, error) {
	if strings.TrimSpace(list) == "" {
		return models.Collections(), nil
	}
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if _, ok := models.Lookup(name); !ok {
			return nil, fmt.Errorf("unknown collection %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
