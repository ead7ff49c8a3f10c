package main

import (
	"fmt"
	"log"
	"os"

	"school-portal-server/models"
	"school-portal-server/storage"

	"golang.org/x/crypto/bcrypt"
)

// Seeds the initial admin account. Email and password come from
// ADMIN_EMAIL / ADMIN_PASSWORD; reruns are no-ops when the account exists.
func main() {
	storage.InitializeDB()

	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	var existing models.User
	result := storage.DB.Where("email = ?", email).Limit(1).Find(&existing)
	if result.Error != nil {
		log.Fatalf("lookup failed: %v", result.Error)
	}
	if result.RowsAffected > 0 {
		fmt.Println("admin account already exists, nothing to do")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}

	admin := models.User{
		FirstName: "Portal",
		LastName:  "Admin",
		Email:     email,
		Password:  string(hashed),
		Role:      models.RoleAdmin,
	}
	if err := storage.DB.Create(&admin).Error; err != nil {
		log.Fatalf("creating admin: %v", err)
	}

	fmt.Println("admin account created:", email)
}
