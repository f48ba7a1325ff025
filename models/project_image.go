package models

import "github.com/google/uuid"

type ImageType string

const (
	ImageTypeHero      ImageType = "hero"
	ImageTypeGallery   ImageType = "gallery"
	ImageTypeThumbnail ImageType = "thumbnail"
)

// ProjectImage joins a project to an image asset and carries per-project display metadata.
// OrderIndex is scoped to the project.
type ProjectImage struct {
	ProjectID  uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;primaryKey;not null;index:idx_project_images_order,priority:1"`
	ImageID    uuid.UUID `json:"imageId" db:"image_id" gorm:"type:uuid;primaryKey;not null;index:idx_project_images_image_id"`
	Type       ImageType `json:"type" db:"type" gorm:"type:text;not null"`
	AltText    *string   `json:"altText" db:"alt_text" gorm:"type:text"`
	OrderIndex int       `json:"orderIndex" db:"order_index" gorm:"not null;default:0;index:idx_project_images_order,priority:2"`

	Image Image `json:"image" gorm:"foreignKey:ImageID;references:ID;constraint:OnDelete:CASCADE"`
}
