package tenant

import (
	"context"
	"errors"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/cache"
	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "tenant:"

// Resolver maps a subdomain onto an ACTIVE tenant through a read-through cache
type Resolver struct {
	db     *database.DB
	store  cache.Store
	ttl    time.Duration
	rules  *Rules
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil store disables caching.
func NewResolver(db *database.DB, store cache.Store, ttl time.Duration, rules *Rules, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rules == nil {
		rules = NewRules()
	}
	return &Resolver{db: db, store: store, ttl: ttl, rules: rules, logger: logger.Named("tenant")}
}

// Rules returns the subdomain rules the resolver enforces
func (r *Resolver) Rules() *Rules { return r.rules }

// Resolve validates raw, loads the tenant and requires it to be ACTIVE
func (r *Resolver) Resolve(ctx context.Context, raw string) (*database.Tenant, error) {
	if Normalize(raw) == "" {
		return nil, errorx.ErrTenantRequired
	}
	sub, err := r.rules.Check(raw)
	if err != nil {
		return nil, errorx.ErrInvalidSubdomain
	}

	t, err := r.Lookup(ctx, sub)
	if err != nil {
		return nil, err
	}
	if err := StatusError(t.Status); err != nil {
		return nil, err
	}
	return t, nil
}

// Lookup loads the tenant for a normalized subdomain whatever its status
func (r *Resolver) Lookup(ctx context.Context, sub string) (*database.Tenant, error) {
	if r.store != nil {
		t, ok, err := cache.GetJSON[database.Tenant](ctx, r.store, cacheKeyPrefix+sub)
		if err != nil {
			r.logger.Warn("tenant cache read failed", zap.String("subdomain", sub), zap.Error(err))
		}
		if ok {
			return t, nil
		}
	}

	t, err := r.db.GetTenantBySubdomain(ctx, sub)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errorx.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		if err := cache.SetJSON(ctx, r.store, cacheKeyPrefix+sub, t, r.ttl); err != nil {
			r.logger.Warn("tenant cache write failed", zap.String("subdomain", sub), zap.Error(err))
		}
	}
	return t, nil
}

// Invalidate drops the cached entry for subdomain. Call it after every tenant mutation.
func (r *Resolver) Invalidate(ctx context.Context, subdomain string) {
	if r.store == nil {
		return
	}
	if err := r.store.Delete(ctx, cacheKeyPrefix+Normalize(subdomain)); err != nil {
		r.logger.Warn("tenant cache invalidation failed", zap.String("subdomain", subdomain), zap.Error(err))
	}
}

// StatusError maps a non-active status onto its 403 error
func StatusError(s database.TenantStatus) error {
	switch s {
	case database.TenantActive:
		return nil
	case database.TenantPending:
		return errorx.ErrTenantPending
	case database.TenantSuspended:
		return errorx.ErrTenantSuspended
	default:
		return errorx.ErrTenantCancelled
	}
}
