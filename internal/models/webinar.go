package models

import "time"

type Webinar struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Title          string    `json:"title" gorm:"not null"`
	Description    string    `json:"description"`
	Host           string    `json:"host"`
	StartTime      time.Time `json:"start_time" gorm:"not null"`
	DurationMins   int       `json:"duration_mins" gorm:"default:60"`
	MeetingLink    string    `json:"-"`
	Price          float64   `json:"price" gorm:"not null;default:0"`
	TotalSlots     int       `json:"total_slots" gorm:"not null"`
	AvailableSlots int       `json:"available_slots" gorm:"not null"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
