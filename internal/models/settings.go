package models

import "time"

// SiteSettings is a singleton configuration row owned by the admin UI.
// This core only reads it for invoice headers and GST computation.
type SiteSettings struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	CompanyName    string    `json:"company_name" gorm:"not null"`
	CompanyEmail   string    `json:"company_email"`
	CompanyPhone   string    `json:"company_phone"`
	CompanyAddress string    `json:"company_address"`
	GSTEnabled     bool      `json:"gst_enabled" gorm:"default:false"`
	GSTNumber      string    `json:"gst_number"`
	GSTRate        float64   `json:"gst_rate" gorm:"default:18"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
