package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestImageRepoCreateOrReuse(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)

	first, err := d.ImageRepo().CreateOrReuse(ctx, "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := d.ImageRepo().CreateOrReuse(ctx, "https://cdn.example.com/a.png")
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same asset id, got %s and %s", first.ID, second.ID)
	}

	var count int64
	d.ImageRepo().GetDB().Model(&models.Image{}).Where("url = ?", first.URL).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row for url, got %d", count)
	}
}

func TestImageRepoCreateOrReuseConcurrent(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "images.db") + "?_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(8)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := New(db).ImageRepo()

	const workers = 8
	const url = "https://cdn.example.com/race.png"
	ids := make([]uuid.UUID, workers)
	failures := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := repo.CreateOrReuse(context.Background(), url)
			if err != nil {
				failures[i] = err
				return
			}
			ids[i] = img.ID
		}(i)
	}
	wg.Wait()

	for i, err := range failures {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	for i, id := range ids {
		if id != ids[0] {
			t.Fatalf("worker %d got asset %s, worker 0 got %s", i, id, ids[0])
		}
	}

	var count int64
	db.Model(&models.Image{}).Where("url = ?", url).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one row for url, got %d", count)
	}
}

func TestImageRepoFileInUse(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)

	mustImage(t, d, "http://localhost:3001/uploads/a1.png")
	mustImage(t, d, "https://cdn.example.com/other.png")

	cases := map[string]bool{
		"a1.png":    true,
		"other.png": true,
		"1.png":     false,
		"b2.png":    false,
	}
	for key, want := range cases {
		got, err := d.ImageRepo().FileInUse(ctx, key)
		if err != nil {
			t.Fatalf("FileInUse(%q): %v", key, err)
		}
		if got != want {
			t.Errorf("FileInUse(%q) = %v, want %v", key, got, want)
		}
	}
}

func TestImageRepoDeleteCascades(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)

	img := mustImage(t, d, "https://cdn.example.com/shared.png")
	keep := mustImage(t, d, "https://cdn.example.com/keep.png")
	p1 := mustProject(t, d, "one", models.ProjectStatusLive, 0)
	p2 := mustProject(t, d, "two", models.ProjectStatusDev, 1)

	for _, p := range []*models.Project{p1, p2} {
		for _, i := range []*models.Image{img, keep} {
			_, err := d.ProjectImageRepo().Attach(ctx, AttachParams{ProjectID: p.ID, ImageID: i.ID, Type: models.ImageTypeGallery})
			if err != nil {
				t.Fatalf("attach: %v", err)
			}
		}
	}

	deleted, err := d.ImageRepo().Delete(ctx, img.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.URL != img.URL {
		t.Fatalf("deleted record url = %q", deleted.URL)
	}

	for _, p := range []*models.Project{p1, p2} {
		joins, err := d.ProjectImageRepo().ListForProject(ctx, p.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(joins) != 1 || joins[0].ImageID != keep.ID {
			t.Fatalf("project %s still references deleted image: %v", p.Slug, imageIDs(joins))
		}
	}

	if _, err := d.ImageRepo().FindByID(ctx, img.ID); !errs.IsNotFound(err) {
		t.Fatalf("expected asset to be gone, got %v", err)
	}
	if _, err := d.ImageRepo().Delete(ctx, uuid.New()); !errs.IsNotFound(err) {
		t.Fatalf("expected not found for unknown asset, got %v", err)
	}
}
