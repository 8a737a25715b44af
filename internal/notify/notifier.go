// Package notify sends best-effort emails in the background. Failures are
// logged and counted; they never reach the request that triggered them.
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dealerhub/dealerhub/internal/apiserver/database"
	"github.com/dealerhub/dealerhub/internal/mail"
	"go.uber.org/zap"
)

// Recorder observes delivery outcomes, e.g. for metrics
type Recorder interface {
	NotificationSent(kind string)
	NotificationFailed(kind string)
}

type nopRecorder struct{}

func (nopRecorder) NotificationSent(string)   {}
func (nopRecorder) NotificationFailed(string) {}

// Options configures a Notifier
type Options struct {
	AdminRecipients []string
	PublicURL       string
	Timeout         time.Duration
	Recorder        Recorder
}

// Notifier renders and dispatches notification emails on detached goroutines
type Notifier struct {
	sender    mail.Sender
	templates *Templates
	opts      Options
	logger    *zap.Logger

	wg       sync.WaitGroup
	failures atomic.Int64
}

// New creates a notifier
func New(sender mail.Sender, opts Options, logger *zap.Logger) (*Notifier, error) {
	tpl, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	return &Notifier{sender: sender, templates: tpl, opts: opts, logger: logger.Named("notify")}, nil
}

// RegistrationReceived confirms a submission to the contact and alerts the platform operators
func (n *Notifier) RegistrationReceived(reg database.TenantRegistration) {
	data := map[string]any{"Registration": reg, "PublicURL": n.opts.PublicURL}
	n.dispatch(TplRegistrationReceived, []string{reg.ContactEmail}, data)
	if len(n.opts.AdminRecipients) > 0 {
		n.dispatch(TplRegistrationAdminNotice, n.opts.AdminRecipients, data)
	}
}

// RegistrationApproved tells the new tenant admin that the account exists
func (n *Notifier) RegistrationApproved(reg database.TenantRegistration, t database.Tenant) {
	to := uniq(reg.AdminEmail, reg.ContactEmail)
	n.dispatch(TplRegistrationApproved, to, map[string]any{"Registration": reg, "Tenant": t, "PublicURL": n.opts.PublicURL})
}

// RegistrationRejected tells the contact the request was declined
func (n *Notifier) RegistrationRejected(reg database.TenantRegistration) {
	n.dispatch(TplRegistrationRejected, []string{reg.ContactEmail}, map[string]any{"Registration": reg})
}

// PasswordReset sends a reset code to the user
func (n *Notifier) PasswordReset(u database.User, t database.Tenant, token string, ttl time.Duration) {
	n.dispatch(TplPasswordReset, []string{u.Email}, map[string]any{
		"User": u, "Tenant": t, "Token": token, "TTL": ttl.String(), "PublicURL": n.opts.PublicURL,
	})
}

func (n *Notifier) dispatch(kind string, to []string, data any) {
	subject, body, err := n.templates.Render(kind, data)
	if err != nil {
		n.fail(kind, to, err)
		return
	}
	msg := mail.Message{To: to, Subject: subject, Text: body}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.logger.Error("notification panicked", zap.String("kind", kind), zap.Any("panic", r))
				n.failures.Add(1)
				n.opts.Recorder.NotificationFailed(kind)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.opts.Timeout)
		defer cancel()
		if err := n.sender.Send(ctx, msg); err != nil {
			n.fail(kind, to, err)
			return
		}
		n.opts.Recorder.NotificationSent(kind)
	}()
}

func (n *Notifier) fail(kind string, to []string, err error) {
	n.failures.Add(1)
	n.opts.Recorder.NotificationFailed(kind)
	n.logger.Warn("notification failed", zap.String("kind", kind), zap.Strings("to", to), zap.Error(err))
}

// Failures returns how many notifications could not be delivered
func (n *Notifier) Failures() int64 { return n.failures.Load() }

// Wait blocks until every in-flight notification finished or ctx is done
func (n *Notifier) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		n.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Join(errors.New("notifications still in flight"), ctx.Err())
	}
}

func uniq(addrs ...string) []string {
	out := make([]string, 0, len(addrs))
	seen := make(map[string]struct{}, len(addrs))
	for _, a := range addrs {
		k := database.NormalizeEmail(a)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
