package database

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProjectRepo struct {
	db *gorm.DB
}

func NewProjectRepo(db *gorm.DB) *ProjectRepo {
	return &ProjectRepo{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *ProjectRepo) GetDB() *gorm.DB {
	return r.db
}

// ProjectPatch holds the fields of a partial project update. Nil pointers and unset
// Nullables are left untouched; TagIDs, when non-nil, replaces the tag set.
type ProjectPatch struct {
	Title            *string
	Slug             *string
	ShortDescription *string
	Description      *string
	KeyFeatures      *[]string
	Type             *models.ProjectType
	Status           *models.ProjectStatus
	ExternalURL      models.Nullable[string]
	GithubURL        models.Nullable[string]
	OrderIndex       *int
	TagIDs           *[]uuid.UUID
}

func (p ProjectPatch) columns() map[string]any {
	updates := map[string]any{}
	if p.Title != nil {
		updates["title"] = *p.Title
	}
	if p.Slug != nil {
		updates["slug"] = *p.Slug
	}
	if p.ShortDescription != nil {
		updates["short_description"] = *p.ShortDescription
	}
	if p.Description != nil {
		updates["description"] = *p.Description
	}
	if p.KeyFeatures != nil {
		updates["key_features"] = datatypes.JSONSlice[string](*p.KeyFeatures)
	}
	if p.Type != nil {
		updates["type"] = *p.Type
	}
	if p.Status != nil {
		updates["status"] = *p.Status
	}
	if p.ExternalURL.Set {
		updates["external_url"] = p.ExternalURL.Value
	}
	if p.GithubURL.Set {
		updates["github_url"] = p.GithubURL.Value
	}
	if p.OrderIndex != nil {
		updates["order_index"] = *p.OrderIndex
	}
	return updates
}

// withAssociations preloads tags and images, images ordered by their per-project index.
func withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags.Tag").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Preload("Images.Image")
}

func finish(projects []models.Project) {
	for i := range projects {
		finishOne(&projects[i])
	}
}

func finishOne(p *models.Project) {
	p.Normalize()
	sort.SliceStable(p.Tags, func(i, j int) bool {
		return p.Tags[i].Tag.Name < p.Tags[j].Tag.Name
	})
}

// ListPublic returns live and dev projects ordered by order index, newest first on ties.
func (r *ProjectRepo) ListPublic(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := withAssociations(r.db.WithContext(ctx)).
		Where("status IN ?", models.PublicStatuses).
		Order("order_index ASC").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	finish(projects)
	return projects, nil
}

// ListAll returns every project regardless of status.
func (r *ProjectRepo) ListAll(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := withAssociations(r.db.WithContext(ctx)).
		Order("order_index ASC").
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, errs.NewDatabaseError("list", "projects", err)
	}
	finish(projects)
	return projects, nil
}

// FindBySlug returns a project by its public slug.
func (r *ProjectRepo) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	var project models.Project
	if err := withAssociations(r.db.WithContext(ctx)).First(&project, "slug = ?", slug).Error; err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	finishOne(&project)
	return &project, nil
}

// FindByID returns a project by its ID
func (r *ProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project, err := loadProject(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "project", err)
	}
	return project, nil
}

func loadProject(tx *gorm.DB, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := withAssociations(tx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	finishOne(&project)
	return &project, nil
}

func checkSlugFree(tx *gorm.DB, slug string, except uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Project{}).Where("slug = ? AND id <> ?", slug, except).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errs.NewUniqueConstraintViolationError("Project", "slug", nil)
	}
	return nil
}

// Create inserts a project and links tagIDs in the same transaction.
func (r *ProjectRepo) Create(ctx context.Context, project *models.Project, tagIDs []uuid.UUID) (*models.Project, error) {
	var created *models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkSlugFree(tx, project.Slug, uuid.Nil); err != nil {
			return err
		}
		// associations are written explicitly below
		if err := tx.Omit("Tags", "Images").Create(project).Error; err != nil {
			if errs.IsUniqueViolation(err) {
				return errs.NewUniqueConstraintViolationError("Project", "slug", err)
			}
			return err
		}
		if len(tagIDs) > 0 {
			if err := insertTags(tx, project.ID, tagIDs); err != nil {
				return err
			}
		}

		var err error
		created, err = loadProject(tx, project.ID)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("create", "project", err)
	}
	return created, nil
}

// Update applies a partial update and, when the patch carries tag ids, replaces the tag set.
func (r *ProjectRepo) Update(ctx context.Context, id uuid.UUID, patch ProjectPatch) (*models.Project, error) {
	var updated *models.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRow(tx, &models.Project{}, "project", id); err != nil {
			return err
		}
		if patch.Slug != nil {
			if err := checkSlugFree(tx, *patch.Slug, id); err != nil {
				return err
			}
		}

		if cols := patch.columns(); len(cols) > 0 {
			err := tx.Model(&models.Project{ID: id}).Updates(cols).Error
			if errs.IsUniqueViolation(err) {
				return errs.NewUniqueConstraintViolationError("Project", "slug", err)
			}
			if err != nil {
				return err
			}
		}

		if patch.TagIDs != nil {
			if err := replaceTags(tx, id, *patch.TagIDs); err != nil {
				return err
			}
		}

		var err error
		updated, err = loadProject(tx, id)
		return err
	})
	if err != nil {
		return nil, errs.NewDatabaseError("update", "project", err)
	}
	return updated, nil
}

// Delete removes a project and all of its tag and image associations.
func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectImage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Project{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NewNotFound("project")
		}
		return nil
	})
	if err != nil {
		return errs.NewDatabaseError("delete", "project", err)
	}
	return nil
}

// Reorder overwrites the listing position of each named project as one unit.
// Positions of projects outside the batch are not checked.
func (r *ProjectRepo) Reorder(ctx context.Context, items []OrderItem) ([]models.Project, error) {
	if err := ValidateOrderBatch(items); err != nil {
		return nil, err
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.Project{}).Where("id = ?", item.ID).Update("order_index", item.OrderIndex)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errs.NewNotFound("project")
			}
		}
		return nil
	})
	if err != nil {
		return nil, errs.NewDatabaseError("reorder", "projects", err)
	}
	return r.ListAll(ctx)
}
