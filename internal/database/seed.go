package database

import (
	"log"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
)

func SeedUsers(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM users"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Users already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding default users...")

	three := 3
	users := []struct {
		email    string
		password string
		name     string
		role     string
		floor    *int
	}{
		{"admin@smartbin.local", "admin123", "Facility Admin", "admin", nil},
		{"staff@smartbin.local", "staff123", "Front Desk Staff", "staff", nil},
		{"janitor@smartbin.local", "janitor123", "Building Janitor", "janitor", &three},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		_, err = db.Exec(`
			INSERT INTO users (id, email, password, name, role, floor)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), u.email, string(hash), u.name, u.role, u.floor)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Seeded %d users", len(users))
	return nil
}

func SeedBins(db *sqlx.DB) error {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM bins"); err != nil {
		return err
	}

	if count > 0 {
		log.Println("✓ Bins already seeded, skipping...")
		return nil
	}

	log.Println("🌱 Seeding monitored bins...")

	// Bin codes match the channel names in the device server payload.
	bins := []struct {
		code     string
		binType  string
		location string
		floor    int
		capacity int
	}{
		{"bin1", "general", "Lobby, east entrance", 1, 120},
		{"bin2", "recycling", "Cafeteria, north wall", 2, 120},
		{"bin3", "organic", "Office wing, pantry", 3, 80},
	}

	for _, b := range bins {
		_, err := db.Exec(`
			INSERT INTO bins (id, bin_code, type, location, floor, bin_level, capacity, status)
			VALUES ($1, $2, $3, $4, $5, 0, $6, 'active')
		`, uuid.New().String(), b.code, b.binType, b.location, b.floor, b.capacity)
		if err != nil {
			return err
		}
	}

	log.Printf("✓ Seeded %d bins", len(bins))
	return nil
}
