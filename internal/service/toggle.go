package service

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkStore manages (user, target) link rows whose only lifecycle is
// insert-once / delete: favorites, shopping cart membership and
// follows. Insertion goes through the database's insert-if-absent
// primitive so two concurrent adds for the same pair cannot produce a
// duplicate row.
type LinkStore[T any] struct {
	db        *gorm.DB
	targetCol string
	newRow    func(userID, targetID uuid.UUID) T
}

func NewLinkStore[T any](db *gorm.DB, targetCol string, newRow func(userID, targetID uuid.UUID) T) *LinkStore[T] {
	return &LinkStore[T]{db: db, targetCol: targetCol, newRow: newRow}
}

// Add inserts the (user, target) row if absent. It returns the stored
// row and whether this call created it.
func (s *LinkStore[T]) Add(userID, targetID uuid.UUID) (T, bool, error) {
	row := s.newRow(userID, targetID)
	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		var zero T
		return zero, false, res.Error
	}
	if res.RowsAffected == 0 {
		var existing T
		if err := s.db.Where("user_id = ? AND "+s.targetCol+" = ?", userID, targetID).First(&existing).Error; err != nil {
			var zero T
			return zero, false, err
		}
		return existing, false, nil
	}
	return row, true, nil
}

// Remove deletes the (user, target) row and reports whether a row was
// actually deleted. Removing an absent link is not an error here; the
// caller decides how to surface it.
func (s *LinkStore[T]) Remove(userID, targetID uuid.UUID) (bool, error) {
	var row T
	res := s.db.Where("user_id = ? AND "+s.targetCol+" = ?", userID, targetID).Delete(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Exists reports whether the (user, target) link is present.
func (s *LinkStore[T]) Exists(userID, targetID uuid.UUID) (bool, error) {
	var count int64
	var row T
	if err := s.db.Model(&row).Where("user_id = ? AND "+s.targetCol+" = ?", userID, targetID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// TargetIDs returns every target linked to the user.
func (s *LinkStore[T]) TargetIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	var row T
	if err := s.db.Model(&row).Where("user_id = ?", userID).Pluck(s.targetCol, &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
