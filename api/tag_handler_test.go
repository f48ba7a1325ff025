package api

import (
	"net/http"
	"testing"

	"github.com/rpupo63/portfolio-backend/models"
)

func TestTags(t *testing.T) {
	s := newTestServer(t, nil)

	created := s.createTag("  Go ", " GO ")
	if created.Name != "Go" || created.Slug != "go" {
		t.Fatalf("tag not normalized: %+v", created)
	}
	s.createTag("Alpha", "alpha")

	rec := s.do(http.MethodGet, "/tags", nil, "")
	s.expect(rec, http.StatusOK)
	tags := decodeBody[[]models.Tag](t, rec)
	if len(tags) != 2 || tags[0].Name != "Alpha" {
		t.Fatalf("tags not ordered by name: %+v", tags)
	}

	t.Run("duplicate slug", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/tags", map[string]string{"name": "Golang", "slug": "go"}, s.admin)
		s.expect(rec, http.StatusBadRequest)
		if body := decodeBody[ErrorResponse](t, rec); body.Error != "Tag slug must be unique" {
			t.Fatalf("message = %q", body.Error)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		rec := s.do(http.MethodPost, "/tags", map[string]string{"name": "Go", "slug": "golang"}, s.admin)
		s.expect(rec, http.StatusBadRequest)
		if body := decodeBody[ErrorResponse](t, rec); body.Error != "Tag name must be unique" {
			t.Fatalf("message = %q", body.Error)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		s.expect(s.do(http.MethodPost, "/tags", map[string]string{"name": "x"}, s.admin), http.StatusBadRequest)
	})

	t.Run("delete cascades", func(t *testing.T) {
		project := s.createProject("demo", "live", 0)
		rec := s.do(http.MethodPost, "/projects/"+project.ID.String()+"/tags",
			map[string]any{"tag_ids": []string{created.ID.String()}}, s.admin)
		s.expect(rec, http.StatusOK)

		s.expect(s.do(http.MethodDelete, "/tags/"+created.ID.String(), nil, s.admin), http.StatusNoContent)

		rec = s.do(http.MethodGet, "/projects/demo", nil, "")
		s.expect(rec, http.StatusOK)
		if tags := decodeBody[models.Project](t, rec).Tags; len(tags) != 0 {
			t.Fatalf("project still tagged: %+v", tags)
		}
		s.expect(s.do(http.MethodDelete, "/tags/"+created.ID.String(), nil, s.admin), http.StatusNotFound)
	})
}
