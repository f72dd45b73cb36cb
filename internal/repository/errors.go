package repository

import (
	"errors"

	domainRepo "clinic-frontdesk/internal/domain/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errors.Join(domainRepo.ErrDuplicate, err)
	}
	return err
}
