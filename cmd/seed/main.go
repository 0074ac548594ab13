// Command seed provisions directory users into the local BadgerDB snapshot
// and mints development tokens for them. The surrounding portal owns the
// real directory; this exists so the messaging service can run standalone.
package main

import (
	"fmt"
	"log"
	"os"

	"campus-link/auth"
	"campus-link/domain"
	"campus-link/internal"
	"campus-link/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

var roster = []domain.User{
	{ID: "11111111-1111-4111-8111-111111111111", Name: "Alice Carter", Role: domain.RoleStudent, Department: "Computer Science", Active: true},
	{ID: "22222222-2222-4222-8222-222222222222", Name: "Brian Osei", Role: domain.RoleAlumni, Department: "Computer Science", Active: true},
	{ID: "33333333-3333-4333-8333-333333333333", Name: "Carla Mendes", Role: domain.RoleCoordinator, Department: "Placement Cell", Active: true},
	{ID: "44444444-4444-4444-8444-444444444444", Name: "Daniel Novak", Role: domain.RoleAdmin, Department: "Administration", Active: true},
	{ID: "55555555-5555-4555-8555-555555555555", Name: "Elena Popov", Role: domain.RoleStudent, Department: "Mechanical", Active: false},
}

func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	validate := validator.New()
	secret := []byte(config.JWTSecret)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Name", "Role", "Department", "Active", "Token"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, user := range roster {
		if err := validate.Struct(user); err != nil {
			log.Fatalf("Invalid roster entry %q: %v", user.Name, err)
		}
		if err := users.SaveUser(user); err != nil {
			log.Fatalf("Failed to save %q: %v", user.Name, err)
		}

		token, err := auth.GenerateToken(secret, user, config.AuthTokenDuration)
		if err != nil {
			log.Fatalf("Failed to mint token for %q: %v", user.Name, err)
		}

		active := color.Green.Sprint("yes")
		if !user.Active {
			active = color.Red.Sprint("no")
		}
		table.Append([]string{user.Name, string(user.Role), user.Department, active, token})
	}

	fmt.Printf("Seeded %d users into %s\n\n", len(roster), config.BadgerFilepath)
	table.Render()
}
