package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ratehub/ratehub-backend/config"
	"github.com/ratehub/ratehub-backend/internal/app/model"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/pkg/util"
	"github.com/xuri/excelize/v2"
)

// Imports stores and their owner accounts from an XLSX register.
// Expected columns: Store Name | Address | Owner Name | Owner Email.
// Owner accounts are created as STORE_OWNER with the password from
// SEED_OWNER_PASSWORD when the email is not registered yet.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}
	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	ownerPassword := os.Getenv("SEED_OWNER_PASSWORD")
	if ownerPassword == "" {
		ownerPassword = "ChangeMe!2024"
	}
	passwordHash, err := util.HashPassword(ownerPassword)
	if err != nil {
		log.Fatal("Failed to hash seed password:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRegister(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}
	fmt.Printf("Total rows to import: %d\n", len(rows))

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	gormDB := db.GetDB()
	ownersByEmail := make(map[string]uint)
	imported := 0

	for _, row := range rows {
		ownerID, ok := ownersByEmail[row.ownerEmail]
		if !ok {
			var owner model.User
			err := gormDB.Where("email = ?", row.ownerEmail).First(&owner).Error
			if err != nil {
				owner = model.User{
					Email:        row.ownerEmail,
					PasswordHash: passwordHash,
					Name:         row.ownerName,
					Role:         model.RoleStoreOwner,
				}
				if err := gormDB.Create(&owner).Error; err != nil {
					log.Printf("Skipping row, owner creation failed for %s: %v", row.ownerEmail, err)
					continue
				}
			}
			ownerID = owner.ID
			ownersByEmail[row.ownerEmail] = ownerID
		}

		store := model.Store{
			Name:    row.storeName,
			Address: row.address,
			OwnerID: ownerID,
		}
		if err := gormDB.Create(&store).Error; err != nil {
			log.Printf("Skipping store %q: %v", row.storeName, err)
			continue
		}
		imported++
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Stores imported: %d, owner accounts: %d\n", imported, len(ownersByEmail))
}

type registerRow struct {
	storeName  string
	address    string
	ownerName  string
	ownerEmail string
}

func readRegister(filePath string) ([]registerRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in XLSX file")
	}

	var result []registerRow
	seen := make(map[string]bool)
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			fmt.Printf("Headers: %v\n", row)
			continue
		}
		if len(row) < 4 {
			skipped++
			continue
		}

		r := registerRow{
			storeName:  strings.TrimSpace(row[0]),
			address:    strings.TrimSpace(row[1]),
			ownerName:  strings.TrimSpace(row[2]),
			ownerEmail: strings.ToLower(strings.TrimSpace(row[3])),
		}
		if r.storeName == "" || r.ownerEmail == "" || !strings.Contains(r.ownerEmail, "@") {
			skipped++
			continue
		}

		key := r.storeName + "|" + r.address + "|" + r.ownerEmail
		if seen[key] {
			skipped++
			continue
		}
		seen[key] = true

		result = append(result, r)
	}

	if skipped > 0 {
		fmt.Printf("Skipped %d invalid or duplicate rows\n", skipped)
	}
	return result, nil
}
