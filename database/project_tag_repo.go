package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProjectTagRepo struct {
	db *gorm.DB
}

func NewProjectTagRepo(db *gorm.DB) *ProjectTagRepo {
	return &ProjectTagRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectTagRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByProject returns the tag joins of a project
func (r *ProjectTagRepo) FindByProject(ctx context.Context, projectID uuid.UUID) ([]models.ProjectTag, error) {
	joins := []models.ProjectTag{}
	err := r.db.WithContext(ctx).Preload("Tag").Where("project_id = ?", projectID).Find(&joins).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "project tags", err)
	}
	return joins, nil
}

// SetTags replaces the project's tag set with tagIDs. Nothing changes if any id is unknown.
func (r *ProjectTagRepo) SetTags(ctx context.Context, projectID uuid.UUID, tagIDs []uuid.UUID) (*models.Project, error) {
	return r.mutate(ctx, "set", projectID, func(tx *gorm.DB) error {
		return replaceTags(tx, projectID, tagIDs)
	})
}

// AddTags links tagIDs to the project. Pairs that already exist are skipped.
func (r *ProjectTagRepo) AddTags(ctx context.Context, projectID uuid.UUID, tagIDs []uuid.UUID) (*models.Project, error) {
	return r.mutate(ctx, "add", projectID, func(tx *gorm.DB) error {
		return insertTags(tx, projectID, tagIDs)
	})
}

// RemoveTag unlinks one tag from the project.
func (r *ProjectTagRepo) RemoveTag(ctx context.Context, projectID, tagID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND tag_id = ?", projectID, tagID).
		Delete(&models.ProjectTag{})
	if res.Error != nil {
		return errs.NewDatabaseError("remove", "project tag", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("project tag")
	}
	return nil
}

func (r *ProjectTagRepo) mutate(ctx context.Context, op string, projectID uuid.UUID, fn func(tx *gorm.DB) error) (*models.Project, error) {
	var project *models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project", projectID); err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			return err
		}

		var err error
		project, err = loadProject(tx, projectID)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError(op, "project tags", err)
	}
	return project, nil
}

func replaceTags(tx *gorm.DB, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectTag{}).Error; err != nil {
		return err
	}
	return insertTags(tx, projectID, tagIDs)
}

func insertTags(tx *gorm.DB, projectID uuid.UUID, tagIDs []uuid.UUID) error {
	ids := dedupeIDs(tagIDs)
	if len(ids) == 0 {
		return nil
	}

	var known int64
	if err := tx.Model(&models.Tag{}).Where("id IN ?", ids).Count(&known).Error; err != nil {
		return err
	}
	if int(known) != len(ids) {
		return errs.NewNotFound("tag")
	}

	joins := make([]models.ProjectTag, len(ids))
	for i, id := range ids {
		joins[i] = models.ProjectTag{ProjectID: projectID, TagID: id}
	}
	return tx.Omit("Tag").Clauses(clause.OnConflict{DoNothing: true}).Create(&joins).Error
}
