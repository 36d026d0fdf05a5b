package models

import "time"

// Product represents a catalog entry.
type Product struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string `json:"name" gorm:"type:varchar(255);not null;index"`
	Ingredients string `json:"ingredients" gorm:"type:text;not null"` // raw editor HTML, sanitized on render

	CreatedByID string `json:"created_by_id" gorm:"type:varchar(36);not null;index"`
	CreatedBy   *User  `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}
