package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Image is an uploaded or externally linked image asset. Its URL is unique.
type Image struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	URL       string    `json:"url" db:"url" gorm:"type:text;not null;uniqueIndex:idx_images_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"not null;index"`
}

func (i *Image) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
