package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/pjecz/plataforma-web/storage/model"
)

// GetIntParametro returns the integer stored at (scope, key), or def when the
// parametro is missing or not positive.
func GetIntParametro(store model.ParametrosStore, scope, key string, def int) (int, error) {
	if store == nil {
		return def, nil
	}
	var v int
	found, err := store.GetAs(scope, key, &v)
	if err != nil {
		return 0, err
	}
	if !found || v <= 0 {
		return def, nil
	}
	return v, nil
}

func tableName[T any]() string {
	var zero T
	if tn, ok := any(zero).(interface{ TableName() string }); ok {
		return tn.TableName()
	}
	return "registros"
}

// notFoundOr maps gorm.ErrRecordNotFound to a model.NotFoundError and wraps
// every other error.
func notFoundOr(err error, format string, params ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NotFoundErrorFmt(format, params...)
	}
	return errors.WithStack(err)
}

// uniqueViolationMarkers are the messages sqlite, mysql and postgres use for
// a unique or primary key violation. Other constraint failures, such as
// foreign keys, checks or trigger aborts, do not match.
var uniqueViolationMarkers = []string{
	"UNIQUE constraint failed",
	"Duplicate entry", "Error 1062",
	"duplicate key value", "violates unique constraint",
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return containsAny(err.Error(), uniqueViolationMarkers...)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
