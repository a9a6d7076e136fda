package db

import (
	"errors"

	"github.com/lib/pq"
)

const (
	postgresUniqueValueViolationErrorCode = "23505"
)

// ErrDuplicateProgressivo signals that the (company, kind, progressivo)
// triple was already used. The sequence allocator is external; a collision
// here means the caller reused a reserved number.
var ErrDuplicateProgressivo = errors.New("progressivo already used for this company and kind")

func isErrorUniqueViolation(err error) bool {
	var psqlErr *pq.Error
	return errors.As(err, &psqlErr) && psqlErr.Code == postgresUniqueValueViolationErrorCode
}
