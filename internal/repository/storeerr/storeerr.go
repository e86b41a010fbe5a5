// Package storeerr maps store faults onto the domain error taxonomy.
package storeerr

import (
	"context"
	"errors"

	"github.com/rahelarnold98/xreco-nmr/internal/db"
	"github.com/rahelarnold98/xreco-nmr/internal/domain"
)

// Map classifies a store error. Errors that already carry a domain kind pass
// through; connection faults become ErrUnavailable; the rest are internal and
// keep the store's message.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, db.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.Unavailable("store is unavailable", err)
	case errors.Is(err, db.ErrKeyNotFound), errors.Is(err, db.ErrIndexNotFound):
		return &domain.Error{Kind: domain.ErrNotFound, Description: op + ": not found", Err: err}
	}
	return domain.Internal(op, err)
}
