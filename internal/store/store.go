// Package store implements the repositories on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"rentbroker/internal/apperrors"
	"rentbroker/internal/db"
	"rentbroker/internal/query"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// TxManager runs a function inside one database transaction. Repositories called with the
// context handed to fn take part in that transaction and lock the rows they read.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(gdb *gorm.DB) *TxManager {
	return &TxManager{db: gdb}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func conn(ctx context.Context, gdb *gorm.DB) (*gorm.DB, bool) {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx, true
	}
	return gdb.WithContext(ctx), false
}

// table holds the operations every entity repository shares.
type table[T any] struct {
	db   *gorm.DB
	noun string
}

func (t table[T]) create(ctx context.Context, v *T) error {
	q, _ := conn(ctx, t.db)
	if err := q.Create(v).Error; err != nil {
		if db.IsDuplicateKey(err) {
			return apperrors.AlreadyExists("%s already exists", t.noun)
		}
		return fmt.Errorf("failed to create %s: %w", t.noun, err)
	}
	return nil
}

func (t table[T]) findByID(ctx context.Context, id int64, scopes ...func(*gorm.DB) *gorm.DB) (*T, error) {
	q, inTx := conn(ctx, t.db)
	if inTx {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var v T
	err := q.Scopes(scopes...).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("%s %d not found", t.noun, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %d: %w", t.noun, id, err)
	}
	return &v, nil
}

// transition moves row id from status `from` to status `to` in a single compare-and-set
// statement. A row that is no longer in `from` leaves nothing updated and yields a conflict.
func (t table[T]) transition(ctx context.Context, id int64, from, to any) error {
	q, _ := conn(ctx, t.db)
	res := q.Model(new(T)).
		Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "status"}, Value: from}).
		Update("status", to)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s %d status: %w", t.noun, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.AlreadyExists("%s %d is no longer %v", t.noun, id, from)
	}
	return nil
}

func (t table[T]) exists(ctx context.Context, pred query.Predicate) (bool, error) {
	q, _ := conn(ctx, t.db)
	var n int64
	if err := q.Model(new(T)).Scopes(pred).Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("failed to check %s: %w", t.noun, err)
	}
	return n > 0, nil
}

func (t table[T]) search(ctx context.Context, spec query.Spec, scopes ...func(*gorm.DB) *gorm.DB) (*query.Page[T], error) {
	q, _ := conn(ctx, t.db)
	return query.Find[T](ctx, q, spec, scopes...)
}
