package repository

import (
	"context"
	"fmt"
	"time"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// likeTarget describes a like-set table and the entity it belongs to.
type likeTarget struct {
	table       string
	column      string
	entityTable string
	resource    string
}

var (
	postLikes = likeTarget{
		table:       "post_likes",
		column:      "post_id",
		entityTable: "posts",
		resource:    "Post",
	}
	commentLikes = likeTarget{
		table:       "comment_likes",
		column:      "comment_id",
		entityTable: "comments",
		resource:    "Comment",
	}
)

// toggleLike flips userID's membership in the like-set of entityID and returns
// the resulting state. The set is a table keyed by (user_id, entity), so the
// delete-or-insert below is idempotent per user and concurrent toggles by
// different users are all reflected in the count.
func toggleLike(ctx context.Context, db *gorm.DB, t likeTarget, entityID, userID uint) (models.LikeResult, error) {
	defer observability.TrackQuery("toggle_like", t.table)()

	var result models.LikeResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The share lock keeps the entity alive until the toggle commits; a
		// delete that won the race leaves nothing to lock.
		if err := lockRow(tx, t.entityTable, entityID, clause.LockingStrengthShare, t.resource); err != nil {
			return err
		}

		removed := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND %s = ?", t.table, t.column),
			userID, entityID,
		)
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected == 0 {
			// A concurrent insert by the same user lands on the primary key and
			// is ignored; either way the user ends up in the set.
			if err := tx.Exec(
				fmt.Sprintf("INSERT INTO %s (user_id, %s, created_at) VALUES (?, ?, ?) ON CONFLICT DO NOTHING", t.table, t.column),
				userID, entityID, time.Now().UTC(),
			).Error; err != nil {
				return err
			}
			result.Liked = true
		}

		var count int64
		if err := tx.Table(t.table).Where(t.column+" = ?", entityID).Count(&count).Error; err != nil {
			return err
		}
		result.Count = int(count)
		return nil
	})
	if err != nil {
		observability.LikeToggles.WithLabelValues(t.resource, "error").Inc()
		if _, ok := foreignKeyViolation(err); ok {
			return models.LikeResult{}, models.NewNotFoundError(t.resource, entityID)
		}
		return models.LikeResult{}, storageError(err)
	}

	outcome := "unliked"
	if result.Liked {
		outcome = "liked"
	}
	observability.LikeToggles.WithLabelValues(t.resource, outcome).Inc()
	return result, nil
}
