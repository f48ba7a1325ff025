package database

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

type TagRepo struct {
	db *gorm.DB
}

func NewTagRepo(db *gorm.DB) *TagRepo {
	return &TagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *TagRepo) GetDB() *gorm.DB {
	return r.db
}

// List returns every tag ordered by name
func (r *TagRepo) List(ctx context.Context) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, errs.NewDatabaseError("list", "tags", err)
	}
	return tags, nil
}

// FindByID returns a tag by its ID
func (r *TagRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).First(&tag, "id = ?", id).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "tag", err)
	}
	return &tag, nil
}

// Create inserts a tag. The name is trimmed and the slug trimmed and lowercased.
// A clash on either column is reported as a conflict naming the column.
func (r *TagRepo) Create(ctx context.Context, name, slug string) (*models.Tag, error) {
	tag := models.Tag{
		Name: strings.TrimSpace(name),
		Slug: strings.ToLower(strings.TrimSpace(slug)),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Tag{}).Where("slug = ?", tag.Slug).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewUniqueConstraintViolationError("Tag", "slug", nil)
		}
		if err := tx.Model(&models.Tag{}).Where("name = ?", tag.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errs.NewUniqueConstraintViolationError("Tag", "name", nil)
		}

		err := tx.Create(&tag).Error
		if errs.IsUniqueViolation(err) {
			// lost a race with a concurrent insert
			return errs.NewUniqueConstraintViolationError("Tag", uniqueColumn(err, "slug", "name"), err)
		}
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "tag", err)
	}
	return &tag, nil
}

// Delete removes a tag together with every project association that references it.
func (r *TagRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NewNotFound("tag")
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "tag", err)
	}
	return nil
}

// uniqueColumn picks which of the candidate columns a unique violation names, defaulting to the first.
func uniqueColumn(err error, candidates ...string) string {
	msg := err.Error()
	for _, c := range candidates {
		if strings.Contains(msg, "."+c) || strings.Contains(msg, "_"+c) {
			return c
		}
	}
	return candidates[0]
}
