// Package store is the record store every service persists through: point
// operations against one table at a time, plus transactions and conditional
// counter updates for callers that need all-or-nothing writes.
package store

import (
	"context" // Context propagated to the driver
	"errors"  // Error inspection
	"fmt"     // Error wrapping

	"storefront/internal/domain" // Domain error kinds

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Quoted column predicates
)

// Store wraps a gorm handle, either the pool or an open transaction
type Store struct {
	db *gorm.DB
}

// Field is a column/value predicate; a []string value matches any of its elements
type Field struct {
	Column string
	Value  any
}

// New creates a store over the given database handle
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap(err)
	}
	return wrap(sqlDB.PingContext(ctx))
}

// Transaction runs fn against a transactional store; any error rolls back every write made through tx
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// Insert creates a record in the table of its model
func (s *Store) Insert(ctx context.Context, record any) error {
	return wrap(s.db.WithContext(ctx).Create(record).Error)
}

// SelectAll returns every row of T's table
func SelectAll[T any](ctx context.Context, s *Store, orderBy ...string) ([]T, error) {
	var rows []T
	q := s.db.WithContext(ctx)
	for _, o := range orderBy {
		q = q.Order(o)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// SelectOneByField returns the single row matching column = value, or domain.ErrNotFound
func SelectOneByField[T any](ctx context.Context, s *Store, column string, value any) (*T, error) {
	return SelectOneWhere[T](ctx, s, Field{Column: column, Value: value})
}

// SelectOneWhere returns the single row matching every predicate, or domain.ErrNotFound
func SelectOneWhere[T any](ctx context.Context, s *Store, where ...Field) (*T, error) {
	var row T
	if err := s.db.WithContext(ctx).Where(conds(where)).Take(&row).Error; err != nil {
		return nil, wrap(err)
	}
	return &row, nil
}

// SelectManyByField returns every row matching column = value
func SelectManyByField[T any](ctx context.Context, s *Store, column string, value any, orderBy ...string) ([]T, error) {
	var rows []T
	q := s.db.WithContext(ctx).Where(eq(column, value))
	for _, o := range orderBy {
		q = q.Order(o)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// SelectManyIn returns every row whose column is one of values
func SelectManyIn[T any](ctx context.Context, s *Store, column string, values []string) ([]T, error) {
	if len(values) == 0 {
		return nil, nil
	}
	var rows []T
	in := clause.IN{Column: clause.Column{Name: column}, Values: toAny(values)}
	if err := s.db.WithContext(ctx).Where(in).Find(&rows).Error; err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// Search returns rows where any of columns contains term
func Search[T any](ctx context.Context, s *Store, term string, columns ...string) ([]T, error) {
	var rows []T
	likes := make([]clause.Expression, 0, len(columns))
	for _, c := range columns {
		likes = append(likes, clause.Like{Column: clause.Column{Name: c}, Value: "%" + term + "%"})
	}
	if err := s.db.WithContext(ctx).Where(clause.Or(likes...)).Find(&rows).Error; err != nil {
		return nil, wrap(err)
	}
	return rows, nil
}

// Update applies patch to the rows of model's table matching every predicate in where.
// Rows affected counts changed rows on MySQL, so callers check existence separately.
func (s *Store) Update(ctx context.Context, model any, patch map[string]any, where ...Field) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("%w: update without predicate", domain.ErrInvalidInput)
	}
	res := s.db.WithContext(ctx).Model(model).Where(conds(where)).Updates(patch)
	return res.RowsAffected, wrap(res.Error)
}

// Delete removes the rows of model's table matching column = value
func (s *Store) Delete(ctx context.Context, model any, column string, value any) (int64, error) {
	return s.DeleteWhere(ctx, model, Field{Column: column, Value: value})
}

// DeleteWhere removes the rows of model's table matching every predicate
func (s *Store) DeleteWhere(ctx context.Context, model any, where ...Field) (int64, error) {
	if len(where) == 0 {
		return 0, fmt.Errorf("%w: delete without predicate", domain.ErrInvalidInput)
	}
	res := s.db.WithContext(ctx).Where(conds(where)).Delete(model)
	return res.RowsAffected, wrap(res.Error)
}

// Decrement subtracts n from column on the row matching where, only while the result stays non-negative.
// It is a single statement, so concurrent callers cannot both pass the check. Zero rows means the guard failed.
func (s *Store) Decrement(ctx context.Context, model any, column string, n int, where Field) (int64, error) {
	res := s.db.WithContext(ctx).Model(model).
		Where(eq(where.Column, where.Value)).
		Where(clause.Gte{Column: clause.Column{Name: column}, Value: n}).
		UpdateColumn(column, gorm.Expr(column+" - ?", n))
	return res.RowsAffected, wrap(res.Error)
}

// Increment adds n to column on the row matching where
func (s *Store) Increment(ctx context.Context, model any, column string, n int, where Field) (int64, error) {
	res := s.db.WithContext(ctx).Model(model).
		Where(eq(where.Column, where.Value)).
		UpdateColumn(column, gorm.Expr(column+" + ?", n))
	return res.RowsAffected, wrap(res.Error)
}

func eq(column string, value any) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: column}, Value: value}
}

// conds joins predicates with AND
func conds(where []Field) clause.Expression {
	exprs := make([]clause.Expression, 0, len(where))
	for _, f := range where {
		if values, ok := f.Value.([]string); ok {
			exprs = append(exprs, clause.IN{Column: clause.Column{Name: f.Column}, Values: toAny(values)})
			continue
		}
		exprs = append(exprs, eq(f.Column, f.Value))
	}
	return clause.And(exprs...)
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// wrap maps driver errors onto the domain taxonomy
func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", domain.ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrStorageFailure, err)
	}
}
