package database

import "chirp/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Parents come before the tables that reference them.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Follow{},
	}
}
