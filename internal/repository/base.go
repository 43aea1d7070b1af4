// Package repository implements the data access layer for the application.
package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	"gighub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATEs for unique_violation and check_violation.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

// isUniqueConstraintError reports whether err is a unique constraint violation
// from either postgres or sqlite.
func isUniqueConstraintError(err error) bool {
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
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

// isCheckConstraintError reports whether err is a CHECK constraint violation
// from either postgres or sqlite.
func isCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgCheckViolation
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "check constraint") ||
		strings.Contains(msg, pgCheckViolation)
}

// mapError converts a store error into an AppError. AppErrors pass through.
func mapError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	if isCheckConstraintError(err) {
		return models.NewValidationError(resource + " violates a field constraint")
	}
	return models.NewInternalError(err)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching s anywhere, with wildcards in
// s escaped. Use with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// jsonElementPatterns match v as an element of a JSON string array stored as
// text. Writers differ on HTML escaping (json.Marshal turns & into \u0026, a
// jsonb text cast does not), so both spellings are returned when they differ.
func jsonElementPatterns(v string) []string {
	escaped, _ := json.Marshal(v)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	plain := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	patterns := []string{containsPattern(string(plain))}
	if !bytes.Equal(escaped, plain) {
		patterns = append(patterns, containsPattern(string(escaped)))
	}
	return patterns
}

// isPostgres reports whether db talks to postgres.
func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

// nonEmpty drops blank and duplicate entries, keeping order.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// jsonValue encodes v for a JSON column in a map-based update, matching the
// json serializer used on the models.
func jsonValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
