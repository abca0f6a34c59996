// Command admin manages administrator rights and account state.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/models"

	"gorm.io/gorm"
)

const usageText = `Usage:
  admin promote <user_id>      Promote user to admin
  admin demote <user_id>       Demote user from admin
  admin deactivate <user_id>   Deactivate an account
  admin reactivate <user_id>   Reactivate an account
  admin list-admins            List all admins`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usageText)
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fail("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		fail("Failed to connect to database: %v", err)
	}

	command := os.Args[1]
	if command == "list-admins" {
		listAdmins(db)
		return
	}

	if len(os.Args) < 3 {
		fmt.Println(usageText)
		os.Exit(1)
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		fail("Invalid user ID %q", os.Args[2])
	}

	switch command {
	case "promote":
		setFlag(db, uint(id), "is_admin", true, "promoted to admin")
	case "demote":
		setFlag(db, uint(id), "is_admin", false, "demoted from admin")
	case "deactivate":
		setFlag(db, uint(id), "is_active", false, "deactivated")
	case "reactivate":
		setFlag(db, uint(id), "is_active", true, "reactivated")
	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println(usageText)
		os.Exit(1)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func setFlag(db *gorm.DB, userID uint, column string, value bool, verb string) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail("User with ID %d not found", userID)
		}
		fail("Database error: %v", err)
	}

	current := user.IsAdmin
	if column == "is_active" {
		current = user.IsActive
	}
	if current == value {
		fmt.Printf("User %s (ID: %d) is already %s\n", user.Username, user.ID, verb)
		return
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).Update(column, value).Error; err != nil {
		fail("Failed to update user: %v", err)
	}

	fmt.Printf("✅ %s (ID: %d) %s\n", user.Username, user.ID, verb)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
		fail("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		status := "active"
		if !admin.IsActive {
			status = "deactivated"
		}
		fmt.Printf("ID: %d | Username: %s | Email: %s | %s\n", admin.ID, admin.Username, admin.Email, status)
	}
	fmt.Println("─────────────────────────────────────")
}
