package database

import (
	"fmt"

	"github.com/randeeprajputr/webinar-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func New(databaseURL string) (*gorm.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs schema migrations and seeds the settings singleton.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Webinar{},
		&models.ServiceOffering{},
		&models.WebinarRegistration{},
		&models.ServicePurchase{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.SiteSettings{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Invoicing needs a settings row to exist; seed a default one if missing.
	var count int64
	db.Model(&models.SiteSettings{}).Count(&count)
	if count == 0 {
		settings := models.SiteSettings{
			CompanyName:  "Webinar Platform",
			CompanyEmail: "billing@example.com",
			GSTEnabled:   false,
			GSTRate:      18,
		}
		if err := db.Create(&settings).Error; err != nil {
			return fmt.Errorf("seed site settings: %w", err)
		}
	}

	return nil
}
