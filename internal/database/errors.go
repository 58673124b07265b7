package database

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is the absence result for every lookup in this package.
// gorm.ErrRecordNotFound never escapes to callers.
var ErrNotFound = errors.New("database: record not found")

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
