package service

import (
	"context"
	"errors"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/auth/jwt"
	"github.com/dealerhub/dealerhub/internal/common/config"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"go.uber.org/zap"
)

// Session is a freshly issued token
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Sessions issues tokens for both namespaces and handles password changes
type Sessions struct {
	db             *database.DB
	users          *jwt.Service
	admins         *jwt.Service
	userTTL        time.Duration
	impersonateTTL time.Duration
	adminTTL       time.Duration
	recorder       Recorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewSessions creates the session service. recorder may be nil.
func NewSessions(db *database.DB, users, admins *jwt.Service, cfg config.JWTConfig, recorder Recorder, logger *zap.Logger) *Sessions {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sessions{
		db:             db,
		users:          users,
		admins:         admins,
		userTTL:        cfg.UserDuration,
		impersonateTTL: cfg.ImpersonateDuration,
		adminTTL:       cfg.SuperAdminDuration,
		recorder:       recorder,
		logger:         logger.Named("sessions"),
		now:            time.Now,
	}
}

// LoginUser checks credentials against the users of t
func (s *Sessions) LoginUser(ctx context.Context, t *database.Tenant, email, password string) (*Session, *database.User, error) {
	u, err := s.db.GetUserByEmail(ctx, t.ID, email)
	if err != nil {
		s.recorder.Login(LoginUser, false)
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, errorx.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.recorder.Login(LoginUser, false)
		return nil, nil, errorx.ErrInvalidCredentials
	}
	if !u.IsActive {
		s.recorder.Login(LoginUser, false)
		return nil, nil, errorx.ErrUserDisabled
	}

	token, exp, err := s.issueUser(u, jwt.Claims{}, s.userTTL)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	if err := s.db.TouchUserLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record login time", zap.String("user_id", u.ID), zap.Error(err))
	}
	u.LastLoginAt = &now
	s.recorder.Login(LoginUser, true)
	return &Session{Token: token, ExpiresAt: exp.Unix()}, u, nil
}

// LoginSuperAdmin checks platform operator credentials
func (s *Sessions) LoginSuperAdmin(ctx context.Context, email, password string) (*Session, *database.SuperAdmin, error) {
	a, err := s.db.GetSuperAdminByEmail(ctx, email)
	if err != nil {
		s.recorder.Login(LoginSuperAdmin, false)
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil, errorx.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if !CheckPassword(a.PasswordHash, password) {
		s.recorder.Login(LoginSuperAdmin, false)
		return nil, nil, errorx.ErrInvalidCredentials
	}
	if !a.IsActive {
		s.recorder.Login(LoginSuperAdmin, false)
		return nil, nil, errorx.ErrUserDisabled
	}

	token, exp, err := s.admins.Issue(a.ID, jwt.Claims{}, s.adminTTL)
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	if err := s.db.TouchSuperAdminLogin(ctx, a.ID, now); err != nil {
		s.logger.Warn("failed to record login time", zap.String("super_admin_id", a.ID), zap.Error(err))
	}
	a.LastLoginAt = &now
	s.recorder.Login(LoginSuperAdmin, true)
	return &Session{Token: token, ExpiresAt: exp.Unix()}, a, nil
}

// ChangePassword replaces the password of a tenant user after checking the old one
func (s *Sessions) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	u, err := s.db.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errorx.ErrNotFound
		}
		return err
	}
	if !CheckPassword(u.PasswordHash, oldPassword) {
		return errorx.ErrInvalidOldPassword
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.SetUserPassword(ctx, u.ID, hash)
}

func (s *Sessions) issueUser(u *database.User, claims jwt.Claims, ttl time.Duration) (string, time.Time, error) {
	claims.TenantID = u.TenantID
	claims.Role = string(u.Role)
	return s.users.Issue(u.ID, claims, ttl)
}
