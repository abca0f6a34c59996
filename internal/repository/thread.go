package repository

import (
	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockRow reads the row id of table under a row lock of the given strength and
// returns a not-found error when it does not exist. SQLite ignores the lock.
func lockRow(tx *gorm.DB, table string, id uint, strength, resource string) error {
	var ids []uint
	err := tx.Table(table).
		Clauses(clause.Locking{Strength: strength}).
		Where("id = ?", id).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return models.NewNotFoundError(resource, id)
	}
	return nil
}

// collectDescendants walks the reply tree under rootID breadth-first, one
// query per depth level, and returns every descendant id.
func collectDescendants(tx *gorm.DB, rootID uint) ([]uint, error) {
	seen := map[uint]struct{}{rootID: {}}
	var descendants []uint

	frontier := []uint{rootID}
	for len(frontier) > 0 {
		var children []uint
		if err := tx.Model(&models.Comment{}).
			Where("parent_id IN ?", frontier).
			Order("id").
			Pluck("id", &children).Error; err != nil {
			return nil, err
		}

		next := children[:0]
		for _, id := range children {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			next = append(next, id)
		}
		descendants = append(descendants, next...)
		frontier = next
	}
	return descendants, nil
}

// lockThread locks the reply tree under rootID FOR UPDATE and returns its
// descendant ids. The root must already be locked by the caller. A reply
// inserted before its parent was locked shows up in the next walk, so the
// walk repeats until it finds nothing new; once every node is locked no
// reply can be attached to the tree until the transaction ends.
func lockThread(tx *gorm.DB, rootID uint) ([]uint, error) {
	locked := map[uint]struct{}{}
	for {
		descendants, err := collectDescendants(tx, rootID)
		if err != nil {
			return nil, err
		}

		var fresh []uint
		for _, id := range descendants {
			if _, ok := locked[id]; !ok {
				fresh = append(fresh, id)
			}
		}
		if len(fresh) == 0 {
			return descendants, nil
		}

		var got []uint
		if err := tx.Model(&models.Comment{}).
			Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
			Where("id IN ?", fresh).
			Order("id").
			Pluck("id", &got).Error; err != nil {
			return nil, err
		}
		for _, id := range fresh {
			locked[id] = struct{}{}
		}
	}
}

// deleteComments removes the given comments and their like-sets.
func deleteComments(tx *gorm.DB, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := tx.Where("comment_id IN ?", ids).Delete(&models.CommentLike{}).Error; err != nil {
		return 0, err
	}
	res := tx.Where("id IN ?", ids).Delete(&models.Comment{})
	return res.RowsAffected, res.Error
}
