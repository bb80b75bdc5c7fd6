package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/storeline/storeline-golang/internal/database"
	"github.com/storeline/storeline-golang/internal/models"
)

type seedProduct struct {
	name        string
	description string
	price       string
	stock       int
	category    string
	image       string
}

var seedProducts = []seedProduct{
	{"Gaming Laptop", "High-performance gaming laptop with RTX 3080", "1299.99", 10, "Electronics", "https://example.com/gaming-laptop.jpg"},
	{"Wireless Headphones", "Noise-cancelling Bluetooth headphones", "199.99", 20, "Electronics", "https://example.com/headphones.jpg"},
	{"Mechanical Keyboard", "RGB mechanical gaming keyboard", "129.99", 15, "Electronics", "https://example.com/keyboard.jpg"},
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is not set")
	}

	db, err := database.OpenDB(dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	now := time.Now()

	var password models.Password
	if err := password.Set("admin123"); err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	result, err := db.Exec(
		"INSERT INTO users (email, password, name, role, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		"admin@example.com", password.Hash, "Admin User", models.RoleAdmin, now, now,
	)
	if err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	adminID, _ := result.LastInsertId()
	log.Printf("Admin user created: id=%d email=admin@example.com", adminID)

	for _, p := range seedProducts {
		price, err := decimal.NewFromString(p.price)
		if err != nil {
			log.Fatalf("Invalid seed price %q: %v", p.price, err)
		}
		_, err = db.Exec(
			"INSERT INTO products (name, description, price, stock, images, category, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)",
			p.name, p.description, price, p.stock, `["`+p.image+`"]`, p.category, now, now,
		)
		if err != nil {
			log.Fatalf("Failed to create product %q: %v", p.name, err)
		}
		log.Printf("Product created: %s", p.name)
	}

	log.Println("Seeding completed successfully!")
}
