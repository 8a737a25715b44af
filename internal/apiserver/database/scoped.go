package database

import (
	"context"

	"gorm.io/gorm"
)

// Pagination bounds
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListOptions selects one page of a listing
type ListOptions struct {
	Page     int
	PageSize int
	Order    string
}

// Normalize clamps page and page size into range
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	if o.Order == "" {
		o.Order = "created_at desc"
	}
	return o
}

func (o ListOptions) offset() int { return (o.Page - 1) * o.PageSize }

// Scope narrows a query, e.g. by a status filter
type Scope = func(*gorm.DB) *gorm.DB

// Scoped is a repository for a tenant-owned table. Every statement it issues
// carries tenant_id, so rows of another tenant behave as if they did not exist.
type Scoped[T any] struct {
	db *DB
}

// NewScoped returns the tenant-scoped repository for T
func NewScoped[T any](db *DB) *Scoped[T] {
	return &Scoped[T]{db: db}
}

func (s *Scoped[T]) query(ctx context.Context, tenantID string) *gorm.DB {
	var zero T
	return getDBFromContext(ctx, s.db.db).Model(&zero).Where("tenant_id = ?", tenantID)
}

// Get returns the row with id inside tenantID or gorm.ErrRecordNotFound
func (s *Scoped[T]) Get(ctx context.Context, tenantID, id string) (*T, error) {
	var v T
	if err := s.query(ctx, tenantID).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// Exists reports whether id belongs to tenantID
func (s *Scoped[T]) Exists(ctx context.Context, tenantID, id string) (bool, error) {
	var n int64
	err := s.query(ctx, tenantID).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// Count counts the tenant's rows matching scopes
func (s *Scoped[T]) Count(ctx context.Context, tenantID string, scopes ...Scope) (int64, error) {
	var n int64
	err := s.query(ctx, tenantID).Scopes(scopes...).Count(&n).Error
	return n, err
}

// List returns one page of the tenant's rows and the unpaged total
func (s *Scoped[T]) List(ctx context.Context, tenantID string, opts ListOptions, scopes ...Scope) ([]T, int64, error) {
	opts = opts.Normalize()

	var total int64
	if err := s.query(ctx, tenantID).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	items := make([]T, 0)
	err := s.query(ctx, tenantID).Scopes(scopes...).
		Order(opts.Order).
		Offset(opts.offset()).
		Limit(opts.PageSize).
		Find(&items).Error
	return items, total, err
}

// All returns every matching row of the tenant, unpaged
func (s *Scoped[T]) All(ctx context.Context, tenantID string, order string, scopes ...Scope) ([]T, error) {
	items := make([]T, 0)
	q := s.query(ctx, tenantID).Scopes(scopes...)
	if order != "" {
		q = q.Order(order)
	}
	return items, q.Find(&items).Error
}

// Create inserts v; the caller sets its TenantID
func (s *Scoped[T]) Create(ctx context.Context, v *T) error {
	return getDBFromContext(ctx, s.db.db).Create(v).Error
}

// CreateMany inserts vs in one statement
func (s *Scoped[T]) CreateMany(ctx context.Context, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	return getDBFromContext(ctx, s.db.db).Create(&vs).Error
}

// Save writes every column of v back. Load v through Get first.
func (s *Scoped[T]) Save(ctx context.Context, v *T) error {
	return getDBFromContext(ctx, s.db.db).Save(v).Error
}

// Update sets the given columns on a row of the tenant
func (s *Scoped[T]) Update(ctx context.Context, tenantID, id string, columns map[string]any) error {
	res := s.query(ctx, tenantID).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the row with id inside tenantID or returns gorm.ErrRecordNotFound
func (s *Scoped[T]) Delete(ctx context.Context, tenantID, id string) error {
	var zero T
	res := getDBFromContext(ctx, s.db.db).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&zero)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// WhereEq filters column = value, skipping empty values
func WhereEq(column string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if s, ok := value.(string); ok && s == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// WhereNot filters column <> value
func WhereNot(column string, value any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" <> ?", value)
	}
}

// Search matches q against any of the columns with a case-insensitive LIKE
func Search(q string, columns ...string) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if q == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + escapeLike(q) + "%"
		cond := db.Session(&gorm.Session{NewDB: true})
		for i, c := range columns {
			expr := "LOWER(" + c + ") LIKE LOWER(?) ESCAPE '!'"
			if i == 0 {
				cond = cond.Where(expr, pattern)
			} else {
				cond = cond.Or(expr, pattern)
			}
		}
		return db.Where(cond)
	}
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '!' {
			out = append(out, '!')
		}
		out = append(out, r)
	}
	return string(out)
}
