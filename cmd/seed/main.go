// Package main provides a tool to seed the database with test scan data.
//
// This creates test users, commits public landmark scans into the global
// pool, and applies feedback-style preference increments so recommendation
// ranking has something to chew on during development.
//
// Usage:
//
//	DB_PATH=~/CityBreaker/data/db go run ./cmd/seed
//	DB_PATH=~/CityBreaker/data/db go run ./cmd/seed --create-users  # Also create test users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/citybreaker/citybreaker-server/internal/auth"
	"github.com/citybreaker/citybreaker-server/internal/domain"
	"github.com/citybreaker/citybreaker-server/internal/geo"
	"github.com/citybreaker/citybreaker-server/internal/id"
	"github.com/citybreaker/citybreaker-server/internal/store"
)

var createUsers = flag.Bool("create-users", false, "Create test users before seeding scans")

// seedLandmark is one entry in the built-in landmark fixture set.
type seedLandmark struct {
	name        string
	lat, lng    float64
	description string
	tags        map[string][]string
}

var landmarks = []seedLandmark{
	{
		name: "Notre-Dame Cathedral", lat: 48.8530, lng: 2.3499,
		description: "Medieval Gothic cathedral on the Île de la Cité.",
		tags: map[string][]string{
			"architecture":     {"gothic"},
			"historical_era":   {"medieval"},
			"cultural":         {"religious"},
			"landmark_type":    {"cathedral"},
			"vibe":             {"majestic"},
			"experience_style": {"popular_spots"},
		},
	},
	{
		name: "Sainte-Chapelle", lat: 48.8554, lng: 2.3450,
		description: "Royal chapel famous for its floor-to-ceiling stained glass.",
		tags: map[string][]string{
			"architecture":   {"gothic"},
			"historical_era": {"medieval"},
			"cultural":       {"religious", "royal"},
			"landmark_type":  {"church"},
			"vibe":           {"serene"},
		},
	},
	{
		name: "Louvre Museum", lat: 48.8606, lng: 2.3376,
		description: "Former royal palace housing the world's most visited art museum.",
		tags: map[string][]string{
			"architecture":     {"classical", "renaissance"},
			"cultural":         {"artistic", "royal"},
			"landmark_type":    {"museum", "palace"},
			"vibe":             {"bustling"},
			"experience_style": {"popular_spots"},
		},
	},
	{
		name: "Centre Pompidou", lat: 48.8607, lng: 2.3522,
		description: "Inside-out high-tech landmark of modern and contemporary art.",
		tags: map[string][]string{
			"architecture":   {"modernist"},
			"historical_era": {"contemporary"},
			"cultural":       {"artistic"},
			"landmark_type":  {"museum"},
			"vibe":           {"vibrant"},
		},
	},
	{
		name: "Pont Neuf", lat: 48.8567, lng: 2.3415,
		description: "Oldest standing bridge across the Seine, finished in 1607.",
		tags: map[string][]string{
			"architecture":     {"renaissance"},
			"historical_era":   {"early_modern"},
			"landmark_type":    {"bridge"},
			"vibe":             {"romantic"},
			"experience_style": {"scenic_views"},
		},
	},
	{
		name: "Panthéon", lat: 48.8462, lng: 2.3464,
		description: "Neoclassical mausoleum for the great figures of France.",
		tags: map[string][]string{
			"architecture":  {"neoclassical"},
			"cultural":      {"literary", "governmental"},
			"landmark_type": {"monument"},
			"vibe":          {"imposing"},
		},
	},
}

var testUsers = []struct {
	email       string
	displayName string
}{
	{"ada@example.com", "Ada"},
	{"marco@example.com", "Marco"},
	{"ibn@example.com", "Ibn"},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/CityBreaker/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUsers {
		seedTestUsers(ctx, s)
	}

	var users []*domain.User
	for user, err := range s.Users.List(ctx) {
		if err != nil {
			log.Fatalf("Failed to list users: %v", err)
		}
		users = append(users, user)
	}

	if len(users) == 0 {
		log.Fatal("No users found in database. Run with --create-users or register one first.")
	}

	fmt.Printf("Found %d users\n", len(users))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Spread the fixture landmarks across users as public scans.
	scansCreated := 0
	for i, lm := range landmarks {
		owner := users[i%len(users)]

		tags, rejected := domain.NormalizeTagSet(lm.tags)
		if len(rejected) > 0 {
			log.Fatalf("Fixture %q has tags outside the taxonomy: %v", lm.name, rejected)
		}

		scanID, err := id.Generate("scan")
		if err != nil {
			log.Fatalf("Failed to generate scan ID: %v", err)
		}

		now := time.Now()
		record := &domain.ScanRecord{
			ID:          scanID,
			OwnerID:     owner.ID,
			Name:        lm.name,
			Location:    geo.Coordinate{Lat: lm.lat, Lng: lm.lng},
			Description: lm.description,
			Tags:        tags,
			Rating:      3 + rng.Intn(3),
			Visibility:  domain.VisibilityPublic,
			CapturedAt:  now.AddDate(0, 0, -rng.Intn(30)),
			CreatedAt:   now,
		}

		if err := s.CommitPublicScan(ctx, record); err != nil {
			log.Fatalf("Failed to commit scan %q: %v", lm.name, err)
		}
		fmt.Printf("  Committed %q for %s\n", lm.name, owner.Email)
		scansCreated++
	}

	// Give each user a preference lean so rankings differ between accounts.
	for _, user := range users {
		lm := landmarks[rng.Intn(len(landmarks))]
		tags, _ := domain.NormalizeTagSet(lm.tags)
		bumped := 0
		for cat, catTags := range tags {
			for _, tag := range catTags {
				if _, err := s.IncrementPreference(ctx, user.ID, cat, tag, 2); err != nil {
					log.Fatalf("Failed to bump preference for %s: %v", user.Email, err)
				}
				bumped++
			}
		}
		fmt.Printf("  Leaned %s toward %q (%d tags)\n", user.Email, lm.name, bumped)
	}

	fmt.Printf("\nDone: %d public scans committed for %d users\n", scansCreated, len(users))
}

func seedTestUsers(ctx context.Context, s *store.Store) {
	for _, tu := range testUsers {
		hash, err := auth.HashPassword("travel-test-password")
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		user := domain.NewUser(userID, tu.email, hash)
		user.DisplayName = tu.displayName

		if err := s.Users.Create(ctx, userID, user); err != nil {
			fmt.Printf("  Skipping %s: %v\n", tu.email, err)
			continue
		}
		fmt.Printf("  Created user %s (%s)\n", tu.email, userID)
	}
}
