package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"educhat/backend/internal/config"
	"educhat/backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "migrate":
		err := db.AutoMigrate(
			&models.Chat{},
			&models.Participant{},
			&models.Message{},
			&models.Notification{},
			&models.User{},
			&models.Instructor{},
		)
		if err != nil {
			log.Fatalf("Error running migrations: %v", err)
		}
		fmt.Println("Migrations complete.")
	case "create-user":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin create-user <name> <email>")
			os.Exit(1)
		}
		u := models.User{Name: os.Args[2], Email: os.Args[3]}
		if err := db.Create(&u).Error; err != nil {
			log.Fatalf("Error creating user: %v", err)
		}
		fmt.Printf("User %s created with id %s.\n", u.Email, u.ID)
	case "create-instructor":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin create-instructor <name> <email>")
			os.Exit(1)
		}
		i := models.Instructor{Name: os.Args[2], Email: os.Args[3]}
		if err := db.Create(&i).Error; err != nil {
			log.Fatalf("Error creating instructor: %v", err)
		}
		fmt.Printf("Instructor %s created with id %s.\n", i.Email, i.ID)
	case "token":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin token <user|instructor> <id>")
			os.Exit(1)
		}
		kind := models.PrincipalKind(os.Args[2])
		if !kind.Valid() {
			fmt.Println("Kind must be 'user' or 'instructor'.")
			os.Exit(1)
		}
		if cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is not set")
		}
		token, err := issueToken(cfg.JWTSecret, os.Args[3], kind)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func issueToken(secret, id string, kind models.PrincipalKind) (string, error) {
	claims := jwt.MapClaims{
		"sub":  id,
		"kind": string(kind),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}
