package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"gorm.io/gorm"
)

// OrderItem assigns a display position to one entity in a reorder batch.
type OrderItem struct {
	ID         uuid.UUID
	OrderIndex int
}

// ValidateOrderBatch rejects empty batches, repeated ids, repeated positions and negative positions.
func ValidateOrderBatch(items []OrderItem) error {
	if len(items) == 0 {
		return errs.NewValidationError([]errs.FieldIssue{{Field: "items", Message: "must contain at least one item"}})
	}

	var issues []errs.FieldIssue
	seenIDs := make(map[uuid.UUID]struct{}, len(items))
	seenIndexes := make(map[int]struct{}, len(items))
	for i, item := range items {
		if _, dup := seenIDs[item.ID]; dup {
			issues = append(issues, errs.FieldIssue{Field: fmt.Sprintf("items[%d].id", i), Message: "duplicate id"})
		}
		seenIDs[item.ID] = struct{}{}

		if item.OrderIndex < 0 {
			issues = append(issues, errs.FieldIssue{Field: fmt.Sprintf("items[%d].order_index", i), Message: "must be >= 0"})
			continue
		}
		if _, dup := seenIndexes[item.OrderIndex]; dup {
			issues = append(issues, errs.FieldIssue{Field: fmt.Sprintf("items[%d].order_index", i), Message: "duplicate order_index"})
		}
		seenIndexes[item.OrderIndex] = struct{}{}
	}

	if len(issues) > 0 {
		return errs.NewValidationError(issues)
	}
	return nil
}

// nextImageIndex is the append position for a new image join: the current join count.
func nextImageIndex(tx *gorm.DB, projectID uuid.UUID) (int, error) {
	var count int64
	err := tx.Model(&models.ProjectImage{}).Where("project_id = ?", projectID).Count(&count).Error
	return int(count), err
}

// checkImageOrderUnique fails when two joins of the project share an order index.
func checkImageOrderUnique(tx *gorm.DB, projectID uuid.UUID) error {
	var dupes []int
	err := tx.Model(&models.ProjectImage{}).
		Select("order_index").
		Where("project_id = ?", projectID).
		Group("order_index").
		Having("COUNT(*) > 1").
		Pluck("order_index", &dupes).Error
	if err != nil {
		return err
	}
	if len(dupes) > 0 {
		return errs.NewValidationError([]errs.FieldIssue{{
			Field:   "items",
			Message: fmt.Sprintf("order_index %d is used by more than one image of this project", dupes[0]),
		}})
	}
	return nil
}

// requireRow returns NotFound for entity unless a row of model with the given id exists.
func requireRow(tx *gorm.DB, model any, entity string, id uuid.UUID) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewNotFound(entity)
	}
	return nil
}

// dedupeIDs drops repeated ids while keeping first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
