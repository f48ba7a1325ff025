package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
)

const maxJSONBodySize = 2 * 1024 * 1024 // 2MB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON request body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxJSONBodySize)
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError("request", err)
	}
	if len(strings.TrimSpace(string(bodyBytes))) == 0 {
		bodyBytes = []byte("{}")
	}

	if err := json.Unmarshal(bodyBytes, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return errs.NewValidationError([]errs.FieldIssue{{
				Field:   typeErr.Field,
				Message: fmt.Sprintf("expected %s", typeErr.Type.String()),
			}})
		}
		return errs.NewInvalidJSONError(err)
	}
	return validateStruct(dst)
}

// validateStruct runs the validator and any extra checks the request type defines.
func validateStruct(v any) error {
	var issues []errs.FieldIssue
	if err := validate.Struct(v); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		for _, fe := range validationErrs {
			issues = append(issues, errs.FieldIssue{Field: fieldPath(fe), Message: fieldMessage(fe)})
		}
	}

	if c, ok := v.(interface{ check() []errs.FieldIssue }); ok {
		issues = append(issues, c.check()...)
	}

	if len(issues) > 0 {
		return errs.NewValidationError(issues)
	}
	return nil
}

// fieldPath strips the top-level struct name, e.g. "tagCreateRequest.slug" -> "slug".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must have at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email"
	case "url", "http_url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// checkNullableURL validates an optional, nullable URL field.
func checkNullableURL(field string, n models.Nullable[string]) []errs.FieldIssue {
	if n.Value == nil {
		return nil
	}
	if err := validate.Var(*n.Value, "required,url"); err != nil {
		return []errs.FieldIssue{{Field: field, Message: "must be a valid URL"}}
	}
	return nil
}

// checkNullableText rejects an explicit empty string; null and absent are fine.
func checkNullableText(field string, n models.Nullable[string]) []errs.FieldIssue {
	if n.Value != nil && *n.Value == "" {
		return []errs.FieldIssue{{Field: field, Message: "must have at least 1 characters"}}
	}
	return nil
}

// pathUUID parses a UUID route parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, errs.NewMissingRequiredFieldError(name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewValidationError([]errs.FieldIssue{{Field: name, Message: "must be a valid UUID"}})
	}
	return id, nil
}

// toUUIDs converts strings that already passed "uuid" validation.
func toUUIDs(raw []string) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		ids = append(ids, uuid.MustParse(s))
	}
	return ids
}
