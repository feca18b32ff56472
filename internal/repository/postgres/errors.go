package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	uniqueViolation = "23505"
	// Raised when a key column of type uuid is compared with malformed text.
	invalidTextRepresentation = "22P02"
)

func isUniqueViolation(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == uniqueViolation
}

// isNoRow reports whether err means the addressed row cannot exist: either no
// row matched or the key was not a valid uuid.
func isNoRow(err error) bool {
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == invalidTextRepresentation
}

// validUUIDs keeps the entries of ids that parse as uuids, in canonical form.
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if u, err := uuid.Parse(id); err == nil {
			out = append(out, u.String())
		}
	}
	return out
}

// escapeLike quotes the LIKE metacharacters of s for use with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
