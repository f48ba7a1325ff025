package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypePersonal ProjectType = "personal"
	ProjectTypeWork     ProjectType = "work"
)

type ProjectStatus string

const (
	ProjectStatusLive     ProjectStatus = "live"
	ProjectStatusDev      ProjectStatus = "dev"
	ProjectStatusArchived ProjectStatus = "archived"
)

// PublicStatuses are the statuses visible to anonymous visitors.
var PublicStatuses = []ProjectStatus{ProjectStatusLive, ProjectStatusDev}

// IsPublic reports whether a project with this status may be listed publicly.
func (s ProjectStatus) IsPublic() bool {
	for _, public := range PublicStatuses {
		if s == public {
			return true
		}
	}
	return false
}

// Project represents a portfolio entry with its tags and ordered images
type Project struct {
	ID               uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title            string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Slug             string                      `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_projects_slug"`
	ShortDescription string                      `json:"shortDescription" db:"short_description" gorm:"type:text;not null"`
	Description      string                      `json:"description" db:"description" gorm:"type:text;not null"`
	KeyFeatures      datatypes.JSONSlice[string] `json:"keyFeatures" db:"key_features"`
	Type             ProjectType                 `json:"type" db:"type" gorm:"type:text;not null"`
	Status           ProjectStatus               `json:"status" db:"status" gorm:"type:text;not null;index"`
	ExternalURL      *string                     `json:"externalUrl" db:"external_url" gorm:"type:text"`
	GithubURL        *string                     `json:"githubUrl" db:"github_url" gorm:"type:text"`
	OrderIndex       int                         `json:"orderIndex" db:"order_index" gorm:"not null;default:0;index"`
	CreatedAt        time.Time                   `json:"createdAt" db:"created_at" gorm:"not null"`
	UpdatedAt        time.Time                   `json:"updatedAt" db:"updated_at" gorm:"not null"`

	Tags   []ProjectTag   `json:"tags" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Images []ProjectImage `json:"images" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.KeyFeatures == nil {
		p.KeyFeatures = datatypes.JSONSlice[string]{}
	}
	return nil
}

// Normalize replaces nil collections with empty ones so they serialize as [] instead of null.
func (p *Project) Normalize() {
	if p.KeyFeatures == nil {
		p.KeyFeatures = datatypes.JSONSlice[string]{}
	}
	if p.Tags == nil {
		p.Tags = []ProjectTag{}
	}
	if p.Images == nil {
		p.Images = []ProjectImage{}
	}
}
