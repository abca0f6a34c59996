// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"chirp/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// storageError passes AppErrors through and wraps everything else as
// STORAGE_UNAVAILABLE so driver errors never leak to callers.
func storageError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStorageError(err)
}

// lookupError maps a single-row lookup failure.
func lookupError(err error, resource string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return storageError(err)
}

// isUniqueViolation checks if a DB error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}

// foreignKeyViolation reports whether err is a foreign key violation and, when
// the driver exposes it, the name of the violated constraint.
func foreignKeyViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgForeignKeyViolation
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return "", true
	}
	msg := strings.ToLower(err.Error())
	return "", strings.Contains(msg, "foreign key constraint")
}
