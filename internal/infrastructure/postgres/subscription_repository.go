package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.SubscriptionRepository = (*SubscriptionRepo)(nil)

// SubscriptionRepo implementación de SubscriptionRepository (usable con pool o tx).
type SubscriptionRepo struct {
	q Querier
}

// NewSubscriptionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSubscriptionRepository(q Querier) *SubscriptionRepo {
	return &SubscriptionRepo{q: q}
}

// GetByClientAndPlan obtiene la suscripción más reciente del par, activa o no.
func (r *SubscriptionRepo) GetByClientAndPlan(ctx context.Context, clientID, planID string) (*entity.Subscription, error) {
	query := `
		SELECT id, client_id, plan_id, invoice_id, status, cadence, amount, created_at, updated_at
		FROM subscriptions
		WHERE client_id = $1 AND plan_id = $2
		ORDER BY created_at DESC LIMIT 1`
	var s entity.Subscription
	err := r.q.QueryRow(ctx, query, clientID, planID).Scan(
		&s.ID, &s.ClientID, &s.PlanID, &s.InvoiceID, &s.Status, &s.Cadence,
		&s.Amount, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	return &s, nil
}

// CountActiveByClientAndPlan cuenta suscripciones activas del par (entero).
func (r *SubscriptionRepo) CountActiveByClientAndPlan(ctx context.Context, clientID, planID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM subscriptions
		WHERE client_id = $1 AND plan_id = $2 AND status = 'active'`
	var n int
	if err := r.q.QueryRow(ctx, query, clientID, planID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active subscriptions: %w", err)
	}
	return n, nil
}

// Create persiste una suscripción. El índice único parcial sobre
// (client_id, plan_id) WHERE status = 'active' convierte la carrera en
// ErrDuplicateConflict.
func (r *SubscriptionRepo) Create(ctx context.Context, sub *entity.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, client_id, plan_id, invoice_id, status, cadence, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		sub.ID, sub.ClientID, sub.PlanID, sub.InvoiceID, sub.Status, sub.Cadence,
		sub.Amount, sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: suscripción activa para cliente %s plan %s: %v", domain.ErrDuplicateConflict, sub.ClientID, sub.PlanID, err)
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// Update actualiza estado, enlace de factura y monto.
func (r *SubscriptionRepo) Update(ctx context.Context, sub *entity.Subscription) error {
	query := `
		UPDATE subscriptions
		SET status = $2, invoice_id = $3, amount = $4, updated_at = $5
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query, sub.ID, sub.Status, sub.InvoiceID, sub.Amount, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	return nil
}
