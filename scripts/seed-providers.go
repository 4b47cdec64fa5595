//go:build ignore

// Seeds the providers table from a JSON file. Run against a migrated
// database:
//
//	DATABASE_URL=postgres://... go run scripts/seed-providers.go providers.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SeedProvider struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Speciality string `json:"speciality"`
	Degree     string `json:"degree"`
	Experience string `json:"experience"`
	About      string `json:"about"`
	Address    string `json:"address"`
	ImageURL   string `json:"image_url"`
	FeeCents   int64  `json:"fee_cents"`
	Available  bool   `json:"available"`
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run scripts/seed-providers.go <providers-file.json>")
		os.Exit(1)
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		fmt.Println("❌ DATABASE_URL is required")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("❌ Error reading file: %v\n", err)
		os.Exit(1)
	}

	var providers []SeedProvider
	if err := json.Unmarshal(data, &providers); err != nil {
		fmt.Printf("❌ Error parsing JSON: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		fmt.Printf("❌ Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	fmt.Printf("🌱 Seeding %d providers\n", len(providers))
	for _, p := range providers {
		_, err := pool.Exec(ctx, `
			INSERT INTO providers (id, name, email, speciality, degree, experience, about, address, image_url, fee_cents, available)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				speciality = EXCLUDED.speciality,
				degree = EXCLUDED.degree,
				experience = EXCLUDED.experience,
				about = EXCLUDED.about,
				address = EXCLUDED.address,
				image_url = EXCLUDED.image_url,
				fee_cents = EXCLUDED.fee_cents,
				available = EXCLUDED.available`,
			p.ID, p.Name, p.Email, p.Speciality, p.Degree, p.Experience,
			p.About, p.Address, p.ImageURL, p.FeeCents, p.Available)
		if err != nil {
			fmt.Printf("❌ Error seeding %s: %v\n", p.ID, err)
			os.Exit(1)
		}
		fmt.Printf("   ✅ %s (%s)\n", p.Name, p.Speciality)
	}
	fmt.Println("Done.")
}
