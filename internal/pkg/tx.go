package pkg

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// WithTx runs fn in a transaction bound to ctx. fn's error rolls the
// transaction back and is returned unwrapped so callers can match domain
// errors; a panic rolls back and is re-raised. A context that is already
// done starts nothing.
func WithTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
