package persistence

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// replaceChildren deletes the T rows of parentID whose id is not in keep, then upserts rows
func replaceChildren[T any](tx *gorm.DB, parentColumn string, parentID uuid.UUID, keep []uuid.UUID, rows []T) error {
	del := tx.Where(parentColumn+" = ?", parentID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(new(T)).Error; err != nil {
		return err
	}
	for i := range rows {
		if err := tx.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
