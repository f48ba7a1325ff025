package api

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpupo63/portfolio-backend/errs"
)

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (projectUpdateRequest, error) {
		var req projectUpdateRequest
		r := httptest.NewRequest("PUT", "/", strings.NewReader(body))
		return req, decodeJSON(r, &req)
	}

	t.Run("absent and null are different", func(t *testing.T) {
		req, err := decode(`{"github_url":null}`)
		if err != nil {
			t.Fatal(err)
		}
		if req.ExternalURL.Set {
			t.Error("external_url should be absent")
		}
		if !req.GithubURL.Set || req.GithubURL.Value != nil {
			t.Errorf("github_url should be explicit null: %+v", req.GithubURL)
		}
	})

	t.Run("empty body is an empty patch", func(t *testing.T) {
		req, err := decode("")
		if err != nil {
			t.Fatal(err)
		}
		patch := req.patch()
		if patch.Title != nil || patch.TagIDs != nil || patch.ExternalURL.Set || patch.GithubURL.Set {
			t.Errorf("expected no changes: %+v", patch)
		}
	})

	t.Run("issues use json names", func(t *testing.T) {
		_, err := decode(`{"status":"gone","key_features":["ok",""]}`)
		if !errs.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		var fields []string
		for _, issue := range err.(*errs.ApiErr).Issues {
			fields = append(fields, issue.Field)
		}
		if strings.Join(fields, ",") != "key_features[1],status" && strings.Join(fields, ",") != "status,key_features[1]" {
			t.Fatalf("fields = %v", fields)
		}
	})

	t.Run("not json", func(t *testing.T) {
		if _, err := decode("<xml/>"); !errs.IsInvalidJSONError(err) {
			t.Fatalf("expected invalid json, got %v", err)
		}
	})
}
