package db

import (
	"log"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/user"
)

// Migrate runs database migrations
func Migrate() {
	err := AppDb.AutoMigrate(
		&domain.User{},
		&domain.Note{},
		&domain.Collab{},
		&domain.Blog{},
		&domain.BlogLike{},
		&domain.Task{},
	)

	if err != nil {
		log.Fatal(err)
	}

	log.Println("Database schema migrated successfully")
}

// SeedData seeds the database with initial data (for development only)
func SeedData() {
	userRepo := user.NewRepository(AppDb)

	admin := &domain.User{
		Username: "admin",
		Email:    "admin@notoria.local",
		Password: "admin123",
		IsAdmin:  true,
	}

	// Check if user exists
	_, err := userRepo.FindByEmail(admin.Email)
	if err != nil {
		userService := user.NewService(userRepo)
		if err := userService.Register(admin); err != nil {
			log.Printf("Error creating admin user: %v", err)
		} else {
			log.Printf("Created admin user: %s", admin.Email)
		}
	} else {
		log.Printf("Admin user already exists: %s", admin.Email)
	}
}
