package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/collab-league-api/pkg/database"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
)

// storeFailure logs a store error with its driver diagnostics and returns the
// generic StoreUnavailable error. Driver details never reach the caller.
// Identifiers Postgres cannot parse address no row, so they surface as NotFound.
func storeFailure(logger *zap.Logger, op string, err error) *appErrors.Error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if database.IsInvalidTextRepresentation(err) {
		logger.Debug("store rejected malformed identifier", zap.String("op", op), zap.Error(err))
		return notFound("")
	}
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	for key, value := range database.Diagnostics(err) {
		if value != "" {
			fields = append(fields, zap.String("pg_"+key, value))
		}
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("store operation cancelled", fields...)
	} else {
		logger.Error("store operation failed", fields...)
	}
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
}

// validID reports whether id is a well-formed uuid. Anything else cannot name a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(message string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, message)
}

func forbidden() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrForbidden, "")
}
