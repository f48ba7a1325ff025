package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a migrated in-memory SQLite database. A single connection keeps
// every query on the same in-memory schema.
func SetupTestDB(t *testing.T) Database {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func mustProject(t *testing.T, d Database, slug string, status models.ProjectStatus, order int) *models.Project {
	t.Helper()
	p, err := d.ProjectRepo().Create(context.Background(), &models.Project{
		Title:            "Project " + slug,
		Slug:             slug,
		ShortDescription: "short",
		Description:      "long",
		Type:             models.ProjectTypePersonal,
		Status:           status,
		OrderIndex:       order,
	}, nil)
	if err != nil {
		t.Fatalf("create project %s: %v", slug, err)
	}
	return p
}

func mustTag(t *testing.T, d Database, name string) *models.Tag {
	t.Helper()
	tag, err := d.TagRepo().Create(context.Background(), name, name)
	if err != nil {
		t.Fatalf("create tag %s: %v", name, err)
	}
	return tag
}

func mustImage(t *testing.T, d Database, url string) *models.Image {
	t.Helper()
	img, err := d.ImageRepo().CreateOrReuse(context.Background(), url)
	if err != nil {
		t.Fatalf("create image %s: %v", url, err)
	}
	return img
}

func imageIDs(joins []models.ProjectImage) []uuid.UUID {
	ids := make([]uuid.UUID, len(joins))
	for i, j := range joins {
		ids[i] = j.ImageID
	}
	return ids
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
