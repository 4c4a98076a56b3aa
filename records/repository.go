// Package records is a small generic repository over gorm. Each record type
// is a collection; callers filter, order and patch by column name and get
// typed *Error values back.
package records

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Repository reads and writes one collection of T.
type Repository[T any] struct {
	db     *gorm.DB
	schema *schema.Schema
	now    func() time.Time
}

var schemaCache sync.Map

// New parses T's schema and returns a repository over db.
func New[T any](db *gorm.DB) (*Repository[T], error) {
	s, err := schema.Parse(new(T), &schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	return &Repository[T]{db: db, schema: s, now: time.Now}, nil
}

// MustNew is New that panics on a schema error. Record types are fixed at
// compile time, so a failure is a programming error.
func MustNew[T any](db *gorm.DB) *Repository[T] {
	r, err := New[T](db)
	if err != nil {
		panic(err)
	}
	return r
}

// Collection returns the table name.
func (r *Repository[T]) Collection() string { return r.schema.Table }

// DB returns the underlying handle.
func (r *Repository[T]) DB() *gorm.DB { return r.db }

func (r *Repository[T]) column(op, name string) (string, error) {
	f := r.schema.LookUpField(name)
	if f == nil || f.DBName == "" {
		return "", invalid(op, r.Collection(), "unknown field %q", name)
	}
	return f.DBName, nil
}

func (r *Repository[T]) where(op string, tx *gorm.DB, filters []Filter) (*gorm.DB, error) {
	for _, f := range filters {
		col, err := r.column(op, f.Field)
		if err != nil {
			return nil, err
		}
		c := clause.Column{Table: r.Collection(), Name: col}
		switch f.Op {
		case OpEq:
			tx = tx.Where(clause.Eq{Column: c, Value: f.Value})
		case OpNeq:
			tx = tx.Where(clause.Neq{Column: c, Value: f.Value})
		case OpIn:
			values, _ := f.Value.([]any)
			tx = tx.Where(clause.IN{Column: c, Values: values})
		default:
			return nil, invalid(op, r.Collection(), "unsupported filter op %d", f.Op)
		}
	}
	return tx, nil
}

// List returns the rows matching q in the requested order.
func (r *Repository[T]) List(ctx context.Context, q Query) ([]T, error) {
	const op = "list"
	tx, err := r.where(op, r.db.WithContext(ctx).Model(new(T)), q.Filters)
	if err != nil {
		return nil, err
	}
	for _, o := range q.OrderBy {
		col, err := r.column(op, o.Field)
		if err != nil {
			return nil, err
		}
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Table: r.Collection(), Name: col}, Desc: o.Desc})
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	out := []T{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, newError(op, r.Collection(), err)
	}
	return out, nil
}

// GetOne returns the first row matching filters, or nil and no error when
// nothing matches.
func (r *Repository[T]) GetOne(ctx context.Context, filters ...Filter) (*T, error) {
	const op = "get"
	tx, err := r.where(op, r.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := tx.Limit(1).Find(&out).Error; err != nil {
		return nil, newError(op, r.Collection(), err)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

// Insert writes rec and returns it with its generated id and timestamps.
func (r *Repository[T]) Insert(ctx context.Context, rec T) (T, error) {
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		var zero T
		return zero, newError("insert", r.Collection(), err)
	}
	return rec, nil
}

// Update applies patch to the rows matching key and bumps updated_at. It
// fails with KindNotFound when key matches nothing.
func (r *Repository[T]) Update(ctx context.Context, key Filter, patch Patch) error {
	const op = "update"
	if key.Field == "" {
		return &Error{Kind: KindValidation, Op: op, Collection: r.Collection(), Err: ErrNoKey}
	}
	if len(patch) == 0 {
		return invalid(op, r.Collection(), "empty patch")
	}
	values := make(map[string]any, len(patch)+1)
	for name, v := range patch {
		col, err := r.column(op, name)
		if err != nil {
			return err
		}
		if f := r.schema.LookUpField(col); f != nil && f.PrimaryKey {
			return invalid(op, r.Collection(), "field %q cannot be patched", name)
		}
		values[col] = v
	}
	if f := r.schema.LookUpField("updated_at"); f != nil {
		if _, set := values[f.DBName]; !set {
			values[f.DBName] = r.now()
		}
	}

	tx, err := r.where(op, r.db.WithContext(ctx).Model(new(T)), []Filter{key})
	if err != nil {
		return err
	}
	res := tx.Updates(values)
	if res.Error != nil {
		return newError(op, r.Collection(), res.Error)
	}
	if res.RowsAffected == 0 {
		return &Error{Kind: KindNotFound, Op: op, Collection: r.Collection(), Err: gorm.ErrRecordNotFound}
	}
	return nil
}

// Remove deletes the rows matching key. Removing nothing is not an error.
func (r *Repository[T]) Remove(ctx context.Context, key Filter) error {
	const op = "remove"
	if key.Field == "" {
		return &Error{Kind: KindValidation, Op: op, Collection: r.Collection(), Err: ErrNoKey}
	}
	tx, err := r.where(op, r.db.WithContext(ctx), []Filter{key})
	if err != nil {
		return err
	}
	if err := tx.Delete(new(T)).Error; err != nil {
		return newError(op, r.Collection(), err)
	}
	return nil
}

// Count returns the number of rows matching filters.
func (r *Repository[T]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	const op = "count"
	tx, err := r.where(op, r.db.WithContext(ctx).Model(new(T)), filters)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, newError(op, r.Collection(), err)
	}
	return n, nil
}

// Exists reports whether any row matches filters.
func (r *Repository[T]) Exists(ctx context.Context, filters ...Filter) (bool, error) {
	n, err := r.Count(ctx, filters...)
	return n > 0, err
}

// ErrNoKey is returned when Update or Remove is called with an empty key.
var ErrNoKey = errors.New("records: empty key")
