package main

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Get database connection string from environment
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("🔌 Connected to database")

	// Hash password for admin accounts (admin123)
	adminPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	// Hash password for janitor account (janitor123)
	janitorPassword, err := bcrypt.GenerateFromPassword([]byte("janitor123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash janitor password: %v", err)
	}

	users := []map[string]interface{}{
		{
			"id":       uuid.New().String(),
			"email":    "maintenance@smartbin.local",
			"password": string(adminPassword),
			"name":     "Maintenance Head",
			"role":     "admin",
			"floor":    nil,
		},
		{
			"id":       uuid.New().String(),
			"email":    "frontdesk@smartbin.local",
			"password": string(adminPassword),
			"name":     "Front Desk",
			"role":     "staff",
			"floor":    nil,
		},
		{
			"id":       uuid.New().String(),
			"email":    "cleaner2@smartbin.local",
			"password": string(janitorPassword),
			"name":     "Second Floor Cleaner",
			"role":     "janitor",
			"floor":    2,
		},
	}

	for _, user := range users {
		// Check if user already exists
		var exists bool
		err := db.Get(&exists, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", user["email"])
		if err != nil {
			log.Printf("❌ Error checking for user %s: %v", user["email"], err)
			continue
		}

		if exists {
			log.Printf("⚠️  User already exists: %s", user["email"])
			continue
		}

		// Insert new user
		query := `
			INSERT INTO users (id, email, password, name, role, floor)
			VALUES (:id, :email, :password, :name, :role, :floor)
		`
		if _, err := db.NamedExec(query, user); err != nil {
			log.Printf("❌ Failed to create user %s: %v", user["email"], err)
			continue
		}

		log.Printf("✅ Created %s user: %s", user["role"], user["email"])
	}

	log.Println("\n📧 Login credentials:")
	log.Println("  maintenance@smartbin.local / admin123 (admin)")
	log.Println("  frontdesk@smartbin.local / admin123 (staff)")
	log.Println("  cleaner2@smartbin.local / janitor123 (janitor)")
}
