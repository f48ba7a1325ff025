package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

func TestProjectRepoListPublic(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)

	mustProject(t, d, "second", models.ProjectStatusDev, 1)
	mustProject(t, d, "first", models.ProjectStatusLive, 0)
	mustProject(t, d, "hidden", models.ProjectStatusArchived, 0)

	projects, err := d.ProjectRepo().ListPublic(ctx)
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 public projects, got %d", len(projects))
	}
	if projects[0].Slug != "first" || projects[1].Slug != "second" {
		t.Fatalf("unexpected order: %s, %s", projects[0].Slug, projects[1].Slug)
	}
	for _, p := range projects {
		if p.Status == models.ProjectStatusArchived {
			t.Fatalf("archived project %s listed publicly", p.Slug)
		}
		if p.Tags == nil || p.Images == nil || p.KeyFeatures == nil {
			t.Fatalf("nil collections on %s", p.Slug)
		}
	}

	all, err := d.ProjectRepo().ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 projects in admin listing, got %d", len(all))
	}
}

func TestProjectRepoCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)
	goTag := mustTag(t, d, "go")
	sqlTag := mustTag(t, d, "sql")

	p, err := d.ProjectRepo().Create(ctx, &models.Project{
		Title:            "Site",
		Slug:             "site",
		ShortDescription: "short",
		Description:      "long",
		KeyFeatures:      []string{"fast"},
		Type:             models.ProjectTypeWork,
		Status:           models.ProjectStatusLive,
		ExternalURL:      strPtr("https://example.com"),
	}, []uuid.UUID{goTag.ID, goTag.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(p.Tags) != 1 || p.Tags[0].Tag.Name != "go" {
		t.Fatalf("expected single go tag, got %+v", p.Tags)
	}

	t.Run("duplicate slug is a conflict", func(t *testing.T) {
		_, err := d.ProjectRepo().Create(ctx, &models.Project{
			Title: "Other", Slug: "site", Type: models.ProjectTypeWork, Status: models.ProjectStatusDev,
		}, nil)
		if !errs.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("unknown tag rolls back create", func(t *testing.T) {
		_, err := d.ProjectRepo().Create(ctx, &models.Project{
			Title: "Ghost", Slug: "ghost", Type: models.ProjectTypeWork, Status: models.ProjectStatusDev,
		}, []uuid.UUID{uuid.New()})
		if !errs.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := d.ProjectRepo().FindBySlug(ctx, "ghost"); !errs.IsNotFound(err) {
			t.Fatalf("project should not exist after failed create, got %v", err)
		}
	})

	t.Run("partial update", func(t *testing.T) {
		title := "Renamed"
		tags := []uuid.UUID{sqlTag.ID}
		updated, err := d.ProjectRepo().Update(ctx, p.ID, ProjectPatch{
			Title:       &title,
			ExternalURL: models.Null[string](),
			TagIDs:      &tags,
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Title != "Renamed" || updated.Description != "long" {
			t.Fatalf("unexpected fields after update: %+v", updated)
		}
		if updated.ExternalURL != nil {
			t.Fatalf("external url should be cleared, got %q", *updated.ExternalURL)
		}
		if len(updated.Tags) != 1 || updated.Tags[0].TagID != sqlTag.ID {
			t.Fatalf("tags not replaced: %+v", updated.Tags)
		}
		if len(updated.KeyFeatures) != 1 || updated.KeyFeatures[0] != "fast" {
			t.Fatalf("key features changed: %v", updated.KeyFeatures)
		}
	})

	t.Run("update unknown project", func(t *testing.T) {
		title := "x"
		if _, err := d.ProjectRepo().Update(ctx, uuid.New(), ProjectPatch{Title: &title}); !errs.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("slug update onto another project conflicts", func(t *testing.T) {
		other := mustProject(t, d, "other", models.ProjectStatusDev, 3)
		slug := "site"
		if _, err := d.ProjectRepo().Update(ctx, other.ID, ProjectPatch{Slug: &slug}); !errs.IsConflict(err) {
			t.Fatalf("expected conflict, got %v", err)
		}
	})
}

func TestProjectRepoDeleteCascades(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)
	p := mustProject(t, d, "doomed", models.ProjectStatusLive, 0)
	tag := mustTag(t, d, "go")
	img := mustImage(t, d, "https://cdn.example.com/x.png")

	if _, err := d.ProjectTagRepo().AddTags(ctx, p.ID, []uuid.UUID{tag.ID}); err != nil {
		t.Fatalf("add tags: %v", err)
	}
	if _, err := d.ProjectImageRepo().Attach(ctx, AttachParams{ProjectID: p.ID, ImageID: img.ID, Type: models.ImageTypeHero}); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if err := d.ProjectRepo().Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	db := d.ProjectRepo().GetDB()
	var tagJoins, imageJoins int64
	db.Model(&models.ProjectTag{}).Where("project_id = ?", p.ID).Count(&tagJoins)
	db.Model(&models.ProjectImage{}).Where("project_id = ?", p.ID).Count(&imageJoins)
	if tagJoins != 0 || imageJoins != 0 {
		t.Fatalf("joins left behind: tags=%d images=%d", tagJoins, imageJoins)
	}
	if _, err := d.ImageRepo().FindByID(ctx, img.ID); err != nil {
		t.Fatalf("asset should survive project delete: %v", err)
	}
	if err := d.ProjectRepo().Delete(ctx, p.ID); !errs.IsNotFound(err) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestProjectRepoReorder(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)
	a := mustProject(t, d, "a", models.ProjectStatusLive, 0)
	b := mustProject(t, d, "b", models.ProjectStatusLive, 1)

	projects, err := d.ProjectRepo().Reorder(ctx, []OrderItem{{ID: a.ID, OrderIndex: 1}, {ID: b.ID, OrderIndex: 0}})
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if projects[0].Slug != "b" || projects[1].Slug != "a" {
		t.Fatalf("unexpected order after reorder: %s, %s", projects[0].Slug, projects[1].Slug)
	}

	t.Run("unknown id fails the batch", func(t *testing.T) {
		_, err := d.ProjectRepo().Reorder(ctx, []OrderItem{{ID: a.ID, OrderIndex: 5}, {ID: uuid.New(), OrderIndex: 6}})
		if !errs.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		got, _ := d.ProjectRepo().FindByID(ctx, a.ID)
		if got.OrderIndex != 1 {
			t.Fatalf("partial reorder applied: order_index = %d", got.OrderIndex)
		}
	})

	t.Run("duplicate indexes are rejected", func(t *testing.T) {
		_, err := d.ProjectRepo().Reorder(ctx, []OrderItem{{ID: a.ID, OrderIndex: 0}, {ID: b.ID, OrderIndex: 0}})
		if !errs.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
