package models

import "github.com/google/uuid"

// ProjectTag joins a project to a tag. The pair is the primary key.
type ProjectTag struct {
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;primaryKey;not null"`
	TagID     uuid.UUID `json:"tagId" db:"tag_id" gorm:"type:uuid;primaryKey;not null;index:idx_project_tags_tag_id"`

	Tag Tag `json:"tag" gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE"`
}
