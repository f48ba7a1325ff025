package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

func tagIDsOf(p *models.Project) map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(p.Tags))
	for _, pt := range p.Tags {
		ids[pt.TagID] = true
	}
	return ids
}

func TestProjectTagRepo(t *testing.T) {
	ctx := context.Background()
	d := SetupTestDB(t)
	p := mustProject(t, d, "tags", models.ProjectStatusLive, 0)
	t1 := mustTag(t, d, "t1")
	t2 := mustTag(t, d, "t2")
	t3 := mustTag(t, d, "t3")
	repo := d.ProjectTagRepo()

	t.Run("set replaces rather than merges", func(t *testing.T) {
		if _, err := repo.SetTags(ctx, p.ID, []uuid.UUID{t1.ID, t2.ID}); err != nil {
			t.Fatalf("first set: %v", err)
		}
		got, err := repo.SetTags(ctx, p.ID, []uuid.UUID{t3.ID})
		if err != nil {
			t.Fatalf("second set: %v", err)
		}
		ids := tagIDsOf(got)
		if len(ids) != 1 || !ids[t3.ID] {
			t.Fatalf("expected exactly {t3}, got %v", ids)
		}
	})

	t.Run("set with unknown tag leaves previous set", func(t *testing.T) {
		_, err := repo.SetTags(ctx, p.ID, []uuid.UUID{t1.ID, uuid.New()})
		if !errs.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		joins, _ := repo.FindByProject(ctx, p.ID)
		if len(joins) != 1 || joins[0].TagID != t3.ID {
			t.Fatalf("tag set changed after failed replace: %+v", joins)
		}
	})

	t.Run("add skips existing pairs", func(t *testing.T) {
		if _, err := repo.AddTags(ctx, p.ID, []uuid.UUID{t1.ID, t1.ID}); err != nil {
			t.Fatalf("add duplicate ids: %v", err)
		}
		got, err := repo.AddTags(ctx, p.ID, []uuid.UUID{t1.ID})
		if err != nil {
			t.Fatalf("add existing: %v", err)
		}
		var count int64
		repo.GetDB().Model(&models.ProjectTag{}).Where("project_id = ? AND tag_id = ?", p.ID, t1.ID).Count(&count)
		if count != 1 {
			t.Fatalf("expected one (p,t1) row, got %d", count)
		}
		if ids := tagIDsOf(got); len(ids) != 2 || !ids[t1.ID] || !ids[t3.ID] {
			t.Fatalf("unexpected tag set: %v", ids)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := repo.RemoveTag(ctx, p.ID, t1.ID); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if err := repo.RemoveTag(ctx, p.ID, t1.ID); !errs.IsNotFound(err) {
			t.Fatalf("expected not found on second remove, got %v", err)
		}
	})

	t.Run("unknown project", func(t *testing.T) {
		if _, err := repo.AddTags(ctx, uuid.New(), []uuid.UUID{t1.ID}); !errs.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}
