package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/ebooklet-admin/internal/patient"
	"github.com/frahmantamala/ebooklet-admin/internal/permission"
	"github.com/frahmantamala/ebooklet-admin/internal/setting"
	"github.com/frahmantamala/ebooklet-admin/internal/user"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an initial admin account plus sample staff and patients for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpg.New(gormpg.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			fmt.Println("Clearing existing data...")
			db.Where("1 = 1").Delete(&patient.Patient{})
			db.Where("1 = 1").Delete(&user.User{})
			db.Where("1 = 1").Delete(&setting.Setting{})
		}

		seedUsers(db, cfg.Security.BCryptCost)
		seedSettings(db)
		seedPatients(db)
	},
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	accounts := []struct {
		Username string
		Password string
		Role     string
	}{
		{"admin", "admin123", permission.RoleAdmin},
		{"perawat", "perawat123", permission.RoleAdminPOC},
		{"exporter", "exporter123", permission.RoleExporter},
	}

	for _, a := range accounts {
		var count int64
		db.Model(&user.User{}).Where("username = ?", a.Username).Count(&count)
		if count > 0 {
			fmt.Printf("user %s already exists; skipping\n", a.Username)
			continue
		}

		perms, err := permission.ByRole(a.Role)
		if err != nil {
			log.Fatalf("invalid seed role %s: %v", a.Role, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		u := &user.User{
			Username:     a.Username,
			PasswordHash: string(hash),
			Role:         a.Role,
			Permissions:  perms,
			IsActive:     true,
		}
		if err := db.Create(u).Error; err != nil {
			log.Fatalf("failed to seed user %s: %v", a.Username, err)
		}
		fmt.Println("Seeded user:", a.Username)
	}
}

func seedSettings(db *gorm.DB) {
	var count int64
	db.Model(&setting.Setting{}).Where("key = ?", setting.KeyPatientBaseURL).Count(&count)
	if count > 0 {
		return
	}

	s := &setting.Setting{
		Key:           setting.KeyPatientBaseURL,
		Value:         "https://booklet.example.com/p",
		LastUpdated:   time.Now(),
		LastUpdatedBy: "seed",
	}
	if err := db.Create(s).Error; err != nil {
		log.Fatalf("failed to seed settings: %v", err)
	}
	fmt.Println("Seeded setting:", setting.KeyPatientBaseURL)
}

func seedPatients(db *gorm.DB) {
	samples := []*patient.Patient{
		{
			MRNumber:    "RM-2024-0001",
			Name:        "Siti Rahma",
			ScheduledAt: time.Now().AddDate(0, 0, 7),
			Doctor:      "dr. Hartono, Sp.B",
			Gender:      "Perempuan",
			Age:         "42",
			Diagnosis:   "Cholelithiasis",
			Payer:       "BPJS",
			Class:       "II",
			Scale:       "Sedang",
		},
		{
			MRNumber:    "RM-2024-0002",
			Name:        "Budi Santoso",
			ScheduledAt: time.Now().AddDate(0, 0, 10),
		},
	}

	for _, p := range samples {
		var count int64
		db.Model(&patient.Patient{}).Where("mr_number = ?", p.MRNumber).Count(&count)
		if count > 0 {
			continue
		}

		p.ApprovalStatus = patient.StatusPending
		p.AccessToken = uuid.NewString()
		if err := db.Create(p).Error; err != nil {
			log.Fatalf("failed to seed patient %s: %v", p.MRNumber, err)
		}
		fmt.Println("Seeded patient:", p.MRNumber)
	}
}
