package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/cache"
	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"go.uber.org/zap"
)

// DefaultResetTTL is how long a password reset token stays valid
const DefaultResetTTL = time.Hour

const resetKeyPrefix = "pwreset:"

// ResetNotifier delivers reset tokens
type ResetNotifier interface {
	PasswordReset(u database.User, t database.Tenant, token string, ttl time.Duration)
}

type resetEntry struct {
	UserID   string `json:"userId"`
	TenantID string `json:"tenantId"`
}

// PasswordResets issues single-use reset tokens kept in the cache store
type PasswordResets struct {
	db       *database.DB
	store    cache.Store
	resolver *tenant.Resolver
	notifier ResetNotifier
	ttl      time.Duration
	logger   *zap.Logger
}

// NewPasswordResets creates the reset service; ttl <= 0 uses DefaultResetTTL
func NewPasswordResets(db *database.DB, store cache.Store, resolver *tenant.Resolver, notifier ResetNotifier, ttl time.Duration, logger *zap.Logger) *PasswordResets {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PasswordResets{db: db, store: store, resolver: resolver, notifier: notifier, ttl: ttl, logger: logger.Named("password_reset")}
}

// Request emails a reset token when the user exists and is active in an ACTIVE
// tenant. Unknown tenants or emails are not reported to the caller.
func (p *PasswordResets) Request(ctx context.Context, subdomain, email string) error {
	t, err := p.resolver.Resolve(ctx, subdomain)
	if err != nil {
		var apiErr *errorx.APIError
		if errors.As(err, &apiErr) {
			p.logger.Debug("reset requested for unusable tenant", zap.String("subdomain", subdomain), zap.String("code", apiErr.Code))
			return nil
		}
		return err
	}
	u, err := p.db.GetUserByEmail(ctx, t.ID, email)
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !u.IsActive {
		return nil
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := cache.SetJSON(ctx, p.store, resetKey(token), resetEntry{UserID: u.ID, TenantID: t.ID}, p.ttl); err != nil {
		return err
	}
	p.notifier.PasswordReset(*u, *t, token, p.ttl)
	return nil
}

// Confirm consumes token and sets the new password. A token works at most once.
func (p *PasswordResets) Confirm(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return errorx.ErrInvalidResetToken
	}
	entry, ok, err := cache.TakeJSON[resetEntry](ctx, p.store, resetKey(token))
	if err != nil {
		return err
	}
	if !ok {
		return errorx.ErrInvalidResetToken
	}

	u, err := database.NewScoped[database.User](p.db).Get(ctx, entry.TenantID, entry.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return errorx.ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := p.db.SetUserPassword(ctx, u.ID, hash); err != nil {
		return err
	}
	p.logger.Info("password reset", zap.String("user_id", u.ID), zap.String("tenant_id", u.TenantID))
	return nil
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// resetKey stores only a digest of the token
func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return resetKeyPrefix + hex.EncodeToString(sum[:])
}
