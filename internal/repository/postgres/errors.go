package postgres

import (
	"github.com/jinzhu/gorm"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"airport-service/internal/repository"
)

const uniqueViolation = "23505"

// translate maps driver errors onto repository errors so callers never see
// raw storage failures for missing rows or unique-constraint races.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if gorm.IsRecordNotFoundError(err) {
		return repository.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &repository.DuplicateError{Constraint: pqErr.Constraint}
	}
	return errors.Wrap(err, "postgres")
}
