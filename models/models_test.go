package models

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestProjectStatusIsPublic(t *testing.T) {
	cases := map[ProjectStatus]bool{
		ProjectStatusLive:     true,
		ProjectStatusDev:      true,
		ProjectStatusArchived: false,
		"unknown":             false,
	}
	for status, want := range cases {
		if got := status.IsPublic(); got != want {
			t.Errorf("%q.IsPublic() = %v, want %v", status, got, want)
		}
	}
}

func TestProjectNormalize(t *testing.T) {
	var p Project
	p.Normalize()
	if p.KeyFeatures == nil || p.Tags == nil || p.Images == nil {
		t.Fatalf("Normalize left nil collections: %+v", p)
	}
}

func TestBeforeCreateAssignsIDs(t *testing.T) {
	tag := &Tag{}
	if err := tag.BeforeCreate(nil); err != nil || tag.ID == uuid.Nil {
		t.Fatalf("tag id not assigned: %v", err)
	}

	existing := uuid.New()
	img := &Image{ID: existing}
	if err := img.BeforeCreate(nil); err != nil || img.ID != existing {
		t.Fatalf("existing image id should be kept")
	}

	p := &Project{}
	if err := p.BeforeCreate(nil); err != nil || p.ID == uuid.Nil || p.KeyFeatures == nil {
		t.Fatalf("project defaults not applied: %+v", p)
	}
}

func TestMigrateAndColumnReport(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	for _, table := range []string{"tags", "images", "projects", "project_tags", "project_images"} {
		if !db.Migrator().HasTable(table) {
			t.Errorf("table %s was not created", table)
		}
	}

	if err := db.Exec("ALTER TABLE projects ADD COLUMN legacy_gif_link text").Error; err != nil {
		t.Fatalf("add column: %v", err)
	}

	report, err := GenerateColumnReport(db)
	if err != nil {
		t.Fatalf("GenerateColumnReport failed: %v", err)
	}
	if got := report["projects"]; len(got) != 1 || got[0] != "legacy_gif_link" {
		t.Errorf("projects report = %v, want [legacy_gif_link]", got)
	}
	if _, ok := report["tags"]; ok {
		t.Errorf("tags should have no unmapped columns")
	}
}
