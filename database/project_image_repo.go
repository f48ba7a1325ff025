package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectImageRepo struct {
	db *gorm.DB
}

func NewProjectImageRepo(db *gorm.DB) *ProjectImageRepo {
	return &ProjectImageRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectImageRepo) GetDB() *gorm.DB {
	return r.db
}

// AttachParams describes one project-image link. A nil OrderIndex appends the image,
// or keeps the current position when the pair is already linked.
type AttachParams struct {
	ProjectID  uuid.UUID
	ImageID    uuid.UUID
	Type       models.ImageType
	AltText    *string
	OrderIndex *int
}

// ImagePatch is a partial update of a project-image link.
type ImagePatch struct {
	Type       *models.ImageType
	AltText    models.Nullable[string]
	OrderIndex *int
}

// ListForProject returns the project's image links ordered by position.
func (r *ProjectImageRepo) ListForProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectImage, error) {
	var joins []models.ProjectImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project", projectID); err != nil {
			return err
		}
		var err error
		joins, err = listImages(tx, projectID)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project images", err)
	}
	return joins, nil
}

// Attach links an existing asset to a project, updating the metadata if the pair is already linked.
func (r *ProjectImageRepo) Attach(ctx context.Context, p AttachParams) (*models.ProjectImage, error) {
	var join *models.ProjectImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Image{}, "image", p.ImageID); err != nil {
			return err
		}
		var err error
		join, err = attach(tx, p)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("attach", "project image", err)
	}
	return join, nil
}

// AttachURL registers url as an asset (reusing an existing one) and links it to the project.
func (r *ProjectImageRepo) AttachURL(ctx context.Context, url string, p AttachParams) (*models.ProjectImage, error) {
	var join *models.ProjectImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project", p.ProjectID); err != nil {
			return err
		}
		image, err := createOrReuseImage(tx, url)
		if err != nil {
			return err
		}
		p.ImageID = image.ID
		join, err = attach(tx, p)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("attach", "project image", err)
	}
	return join, nil
}

func attach(tx *gorm.DB, p AttachParams) (*models.ProjectImage, error) {
	if err := requireRow(tx, &models.Project{}, "project", p.ProjectID); err != nil {
		return nil, err
	}

	var index int
	switch {
	case p.OrderIndex != nil:
		index = *p.OrderIndex
	default:
		var existing models.ProjectImage
		res := tx.Where("project_id = ? AND image_id = ?", p.ProjectID, p.ImageID).Limit(1).Find(&existing)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			index = existing.OrderIndex
		} else {
			next, err := nextImageIndex(tx, p.ProjectID)
			if err != nil {
				return nil, err
			}
			index = next
		}
	}

	join := models.ProjectImage{
		ProjectID:  p.ProjectID,
		ImageID:    p.ImageID,
		Type:       p.Type,
		AltText:    p.AltText,
		OrderIndex: index,
	}
	err := tx.Omit("Image").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "image_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"type", "alt_text", "order_index"}),
	}).Create(&join).Error
	if err != nil {
		return nil, err
	}

	return findImageJoin(tx, p.ProjectID, p.ImageID)
}

// UpdateMetadata patches the type, alt text or position of an existing link.
func (r *ProjectImageRepo) UpdateMetadata(ctx context.Context, projectID, imageID uuid.UUID, patch ImagePatch) (*models.ProjectImage, error) {
	var join *models.ProjectImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findImageJoin(tx, projectID, imageID); err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Type != nil {
			updates["type"] = *patch.Type
		}
		if patch.AltText.Set {
			updates["alt_text"] = patch.AltText.Value
		}
		if patch.OrderIndex != nil {
			updates["order_index"] = *patch.OrderIndex
		}
		if len(updates) > 0 {
			err := tx.Model(&models.ProjectImage{}).
				Where("project_id = ? AND image_id = ?", projectID, imageID).
				Updates(updates).Error
			if err != nil {
				return err
			}
		}

		var err error
		join, err = findImageJoin(tx, projectID, imageID)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "project image", err)
	}
	return join, nil
}

// Reorder overwrites the positions of the named images as one unit. The batch fails as a
// whole if an id is not linked to the project or if two links would share a position.
func (r *ProjectImageRepo) Reorder(ctx context.Context, projectID uuid.UUID, items []OrderItem) ([]models.ProjectImage, error) {
	if err := ValidateOrderBatch(items); err != nil {
		return nil, err
	}

	var joins []models.ProjectImage
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project", projectID); err != nil {
			return err
		}
		for _, item := range items {
			res := tx.Model(&models.ProjectImage{}).
				Where("project_id = ? AND image_id = ?", projectID, item.ID).
				Update("order_index", item.OrderIndex)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.NewNotFound("project image")
			}
		}
		if err := checkImageOrderUnique(tx, projectID); err != nil {
			return err
		}

		var err error
		joins, err = listImages(tx, projectID)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("reorder", "project images", err)
	}
	return joins, nil
}

// Detach removes one link. The remaining positions are left as they are.
func (r *ProjectImageRepo) Detach(ctx context.Context, projectID, imageID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND image_id = ?", projectID, imageID).
		Delete(&models.ProjectImage{})
	if res.Error != nil {
		return errs.NewDatabaseError("detach", "project image", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project image")
	}
	return nil
}

func listImages(tx *gorm.DB, projectID uuid.UUID) ([]models.ProjectImage, error) {
	joins := []models.ProjectImage{}
	err := tx.Preload("Image").
		Where("project_id = ?", projectID).
		Order("order_index ASC").
		Find(&joins).Error
	return joins, err
}

func findImageJoin(tx *gorm.DB, projectID, imageID uuid.UUID) (*models.ProjectImage, error) {
	var join models.ProjectImage
	res := tx.Preload("Image").
		Where("project_id = ? AND image_id = ?", projectID, imageID).
		Limit(1).
		Find(&join)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errs.NewNotFound("project image")
	}
	return &join, nil
}
