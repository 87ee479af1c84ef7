// Package identity decorates providers with cross-cutting concerns.
package identity

import (
	"context"

	"enroll/internal/domain/entity"
	"enroll/internal/domain/service"
	"enroll/internal/infra/metrics"
)

const (
	statusOK    = "ok"
	statusError = "error"
)

type instrumentedProvider struct {
	next    service.IdentityProvider
	metrics *metrics.Metrics
}

// WithMetrics wraps a provider so every call is counted by operation and
// status.
func WithMetrics(next service.IdentityProvider, m *metrics.Metrics) service.IdentityProvider {
	return &instrumentedProvider{next: next, metrics: m}
}

func (p *instrumentedProvider) record(op string, err error) {
	status := statusOK
	if err != nil {
		status = statusError
	}
	p.metrics.ProviderRequests.WithLabelValues(op, status).Inc()
}

func (p *instrumentedProvider) CreateAccount(ctx context.Context, acc service.NewAccount) (string, error) {
	id, err := p.next.CreateAccount(ctx, acc)
	p.record("create_account", err)

	return id, err
}

func (p *instrumentedProvider) Login(ctx context.Context, email, password string) (*entity.TokenBundle, error) {
	bundle, err := p.next.Login(ctx, email, password)
	p.record("login", err)

	return bundle, err
}

func (p *instrumentedProvider) Refresh(ctx context.Context, refreshToken string) (*entity.TokenBundle, error) {
	bundle, err := p.next.Refresh(ctx, refreshToken)
	p.record("refresh", err)

	return bundle, err
}

func (p *instrumentedProvider) GetAccount(ctx context.Context, accountID string) (*entity.Account, error) {
	acc, err := p.next.GetAccount(ctx, accountID)
	p.record("get_account", err)

	return acc, err
}

func (p *instrumentedProvider) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists, err := p.next.ExistsByEmail(ctx, email)
	p.record("exists_by_email", err)

	return exists, err
}

func (p *instrumentedProvider) DeleteAccount(ctx context.Context, accountID string) error {
	err := p.next.DeleteAccount(ctx, accountID)
	p.record("delete_account", err)

	return err
}
