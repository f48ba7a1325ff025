package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImageRepo struct {
	db *gorm.DB
}

func NewImageRepo(db *gorm.DB) *ImageRepo {
	return &ImageRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ImageRepo) GetDB() *gorm.DB {
	return r.db
}

// List returns every image asset, newest first
func (r *ImageRepo) List(ctx context.Context) ([]models.Image, error) {
	images := []models.Image{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "images", err)
	}
	return images, nil
}

// FindByID returns an image asset by its ID
func (r *ImageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "image", err)
	}
	return &image, nil
}

// CreateOrReuse returns the asset registered for url, creating it when none exists.
// Concurrent calls for the same URL converge on one row through the unique index.
func (r *ImageRepo) CreateOrReuse(ctx context.Context, url string) (*models.Image, error) {
	var image *models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		image, err = createOrReuseImage(tx, url)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "image", err)
	}
	return image, nil
}

func createOrReuseImage(tx *gorm.DB, url string) (*models.Image, error) {
	candidate := models.Image{URL: url}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(&candidate).Error
	if err != nil {
		return nil, err
	}

	var image models.Image
	if err := tx.Where("url = ?", url).First(&image).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// FileInUse reports whether any asset URL still ends in /<key>.
func (r *ImageRepo) FileInUse(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Image{}).Where("url LIKE ?", "%/"+key).Count(&count).Error
	if err != nil {
		return false, errs.NewDatabaseError("count", "images", err)
	}
	return count > 0, nil
}

// Delete removes an asset and every project association that references it, returning the
// removed record so the caller can clean up the backing file.
func (r *ImageRepo) Delete(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&image, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("image_id = ?", id).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&image).Error
	})
	if err != nil {
		return nil, errs.NewDatabaseError("delete", "image", err)
	}
	return &image, nil
}
