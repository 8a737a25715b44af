package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/common/errorx"
	"github.com/dealerhub/dealerhub/internal/tenant"
	"github.com/dealerhub/dealerhub/pkg/trace"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Reasons reported by the availability check
const (
	ReasonMalformed = "invalid"
	ReasonReserved  = "reserved"
	ReasonTaken     = "taken"
	ReasonPending   = "pending"
)

// Availability is the answer of the public subdomain check
type Availability struct {
	Subdomain string `json:"subdomain"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Notifications sent by the registration workflow
type RegistrationNotifier interface {
	RegistrationReceived(reg database.TenantRegistration)
	RegistrationApproved(reg database.TenantRegistration, t database.Tenant)
	RegistrationRejected(reg database.TenantRegistration)
}

// SubmitInput is a public sign-up request
type SubmitInput struct {
	BusinessName string
	Subdomain    string
	ContactEmail string
	Phone        string
	AdminName    string
	AdminEmail   string
	Password     string
	Plan         string
}

// Registrations drives PENDING -> APPROVED | REJECTED
type Registrations struct {
	db          *database.DB
	rules       *tenant.Rules
	resolver    *tenant.Resolver
	provisioner *Provisioner
	notifier    RegistrationNotifier
	recorder    Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// NewRegistrations wires the workflow. recorder may be nil.
func NewRegistrations(db *database.DB, resolver *tenant.Resolver, provisioner *Provisioner,
	notifier RegistrationNotifier, recorder Recorder, logger *zap.Logger) *Registrations {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrations{
		db:          db,
		rules:       resolver.Rules(),
		resolver:    resolver,
		provisioner: provisioner,
		notifier:    notifier,
		recorder:    recorder,
		logger:      logger.Named("registration"),
		now:         time.Now,
	}
}

// CheckSubdomain reports whether raw could be registered right now. It has no side effects.
func (r *Registrations) CheckSubdomain(ctx context.Context, raw string) (Availability, error) {
	sub, err := r.rules.Check(raw)
	a := Availability{Subdomain: sub}
	switch {
	case errors.Is(err, tenant.ErrReserved):
		a.Reason = ReasonReserved
		return a, nil
	case err != nil:
		a.Reason = ReasonMalformed
		return a, nil
	}

	taken, err := r.db.SubdomainTaken(ctx, sub)
	if err != nil {
		return a, err
	}
	if taken {
		a.Reason = ReasonTaken
		return a, nil
	}
	pending, err := r.db.PendingRegistrationExists(ctx, sub, "")
	if err != nil {
		return a, err
	}
	if pending {
		a.Reason = ReasonPending
		return a, nil
	}
	a.Available = true
	return a, nil
}

// Submit stores a PENDING registration and sends the confirmation emails
func (r *Registrations) Submit(ctx context.Context, in SubmitInput) (*database.TenantRegistration, error) {
	a, err := r.CheckSubdomain(ctx, in.Subdomain)
	if err != nil {
		return nil, err
	}
	switch a.Reason {
	case ReasonReserved:
		return nil, errorx.ErrReservedSubdomain
	case ReasonMalformed:
		return nil, errorx.ErrInvalidSubdomain
	case ReasonTaken, ReasonPending:
		return nil, errorx.ErrSubdomainUnavailable.WithMessage("subdomain is not available")
	}
	planName, _, err := r.provisioner.ResolvePlan(in.Plan)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	reg := &database.TenantRegistration{
		BusinessName: strings.TrimSpace(in.BusinessName),
		Subdomain:    a.Subdomain,
		ContactEmail: database.NormalizeEmail(in.ContactEmail),
		Phone:        in.Phone,
		AdminName:    strings.TrimSpace(in.AdminName),
		AdminEmail:   database.NormalizeEmail(in.AdminEmail),
		PasswordHash: hash,
		Plan:         planName,
		Status:       database.RegistrationPending,
	}
	if err := r.db.CreateRegistration(ctx, reg); err != nil {
		return nil, err
	}

	r.recorder.Registration(EventSubmitted)
	r.logger.Info("registration submitted", zap.String("id", reg.ID), zap.String("subdomain", reg.Subdomain))
	r.notifier.RegistrationReceived(*reg)
	return reg, nil
}

// List returns registrations, optionally filtered by status
func (r *Registrations) List(ctx context.Context, status database.RegistrationStatus, opts database.ListOptions) ([]database.TenantRegistration, int64, error) {
	return r.db.ListRegistrations(ctx, status, opts)
}

// Get returns a registration or NOT_FOUND
func (r *Registrations) Get(ctx context.Context, id string) (*database.TenantRegistration, error) {
	reg, err := r.db.GetRegistration(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, errorx.ErrNotFound
	}
	return reg, err
}

// Approve re-checks the subdomain and provisions the tenant inside one
// transaction. On any failure nothing is written and the registration stays PENDING.
func (r *Registrations) Approve(ctx context.Context, id, reviewerID string) (*database.TenantRegistration, *database.Tenant, error) {
	span := trace.Tracer(cnst.TraceRegistration).Start(ctx, cnst.SpanRegistrationApprove).
		WithAttrs(attribute.String(cnst.AttrRegistrationID, id))
	defer span.End()
	ctx = span.Ctx

	var (
		reg *database.TenantRegistration
		t   *database.Tenant
	)
	err := r.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		reg, err = r.Get(ctx, id)
		if err != nil {
			return err
		}
		if reg.Status != database.RegistrationPending {
			return errorx.ErrRegistrationState
		}

		if r.rules.IsReserved(reg.Subdomain) {
			return errorx.ErrSubdomainUnavailable
		}
		taken, err := r.db.SubdomainTaken(ctx, reg.Subdomain)
		if err != nil {
			return err
		}
		if taken {
			return errorx.ErrSubdomainUnavailable
		}

		t, _, err = r.provisioner.Provision(ctx, ProvisionInput{
			Subdomain:         reg.Subdomain,
			Name:              reg.BusinessName,
			Email:             reg.ContactEmail,
			Phone:             reg.Phone,
			Plan:              reg.Plan,
			AdminName:         reg.AdminName,
			AdminEmail:        reg.AdminEmail,
			AdminPasswordHash: reg.PasswordHash,
		})
		if err != nil {
			return err
		}

		now := r.now()
		reg.Status = database.RegistrationApproved
		reg.TenantID = t.ID
		reg.ReviewedBy = reviewerID
		reg.ReviewedAt = &now
		return r.db.SaveRegistration(ctx, reg)
	})
	if err != nil {
		span.RecordError(err)
		return nil, nil, err
	}
	span.WithAttrs(attribute.String(cnst.AttrTenantID, t.ID), attribute.String(cnst.AttrSubdomain, t.Subdomain))

	r.resolver.Invalidate(ctx, t.Subdomain)
	r.recorder.Registration(EventApproved)
	r.logger.Info("registration approved",
		zap.String("id", reg.ID), zap.String("tenant_id", t.ID), zap.String("reviewer", reviewerID))
	r.notifier.RegistrationApproved(*reg, *t)
	return reg, t, nil
}

// Reject moves a PENDING registration to REJECTED. REJECTED is terminal.
func (r *Registrations) Reject(ctx context.Context, id, reviewerID, reason string) (*database.TenantRegistration, error) {
	var reg *database.TenantRegistration
	err := r.db.Transaction(ctx, func(ctx context.Context) error {
		var err error
		reg, err = r.Get(ctx, id)
		if err != nil {
			return err
		}
		if reg.Status != database.RegistrationPending {
			return errorx.ErrRegistrationState
		}
		now := r.now()
		reg.Status = database.RegistrationRejected
		reg.RejectionReason = strings.TrimSpace(reason)
		reg.ReviewedBy = reviewerID
		reg.ReviewedAt = &now
		return r.db.SaveRegistration(ctx, reg)
	})
	if err != nil {
		return nil, err
	}

	r.recorder.Registration(EventRejected)
	r.logger.Info("registration rejected", zap.String("id", reg.ID), zap.String("reviewer", reviewerID))
	r.notifier.RegistrationRejected(*reg)
	return reg, nil
}
