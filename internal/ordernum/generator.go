package ordernum

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

const sequenceName = "orders"

// Generator hands out human-readable order numbers. Injected as a capability
// so callers never touch the sequence storage directly.
type Generator interface {
	Next(ctx context.Context) (string, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type dbGenerator struct {
	tx     txRunner
	prefix string
}

// NewGenerator returns a database-backed sequential generator.
func NewGenerator(tx txRunner, prefix string) (Generator, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if prefix == "" {
		prefix = "SO"
	}
	return &dbGenerator{tx: tx, prefix: prefix}, nil
}

func (g *dbGenerator) Next(ctx context.Context) (string, error) {
	var value int64
	err := g.tx.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.WithContext(ctx).
			Exec("UPDATE order_sequences SET value = value + 1 WHERE name = ?", sequenceName)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.WithContext(ctx).
				Exec("INSERT INTO order_sequences (name, value) VALUES (?, 1)", sequenceName).Error; err != nil {
				return err
			}
		}
		return tx.WithContext(ctx).
			Raw("SELECT value FROM order_sequences WHERE name = ?", sequenceName).
			Scan(&value).Error
	})
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("%s-%06d", g.prefix, value), nil
}
