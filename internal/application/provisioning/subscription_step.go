package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// SubscriptionStep asegura exactamente una suscripción activa para el par
// (cliente, plan) resuelto, enlazada a la factura del pago.
type SubscriptionStep struct {
	now func() time.Time
}

// NewSubscriptionStep construye el paso.
func NewSubscriptionStep() *SubscriptionStep {
	return &SubscriptionStep{now: time.Now}
}

// Provision busca una suscripción activa del par (cliente, plan); si existe,
// asegura su enlace a la factura y la retorna (reused). Si existe inactiva,
// la reactiva. Si no, crea una nueva con el monto del plan. La decisión de
// existencia usa un conteo entero, nunca un booleano.
func (s *SubscriptionStep) Provision(ctx context.Context, r StepRepos, clientID, planID, invoiceID string) (*entity.Subscription, string, error) {
	n, err := r.Subscriptions.CountActiveByClientAndPlan(ctx, clientID, planID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: contar suscripciones activas: %v", domain.ErrTransientStore, err)
	}
	if n > 0 {
		sub, err := r.Subscriptions.GetByClientAndPlan(ctx, clientID, planID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: leer suscripción activa: %v", domain.ErrTransientStore, err)
		}
		if sub == nil {
			return nil, "", fmt.Errorf("%w: conteo activo sin fila legible", domain.ErrTransientStore)
		}
		if err := s.ensureInvoiceLink(ctx, r, sub, invoiceID); err != nil {
			return nil, "", err
		}
		return sub, StepReused, nil
	}

	plan, err := r.Plans.GetByID(ctx, planID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: leer plan: %v", domain.ErrTransientStore, err)
	}
	if plan == nil {
		return nil, "", fmt.Errorf("%w: plan %s inexistente", domain.ErrMissingReference, planID)
	}

	// Suscripción previa inactiva del mismo par: se reactiva en lugar de crear.
	prev, err := r.Subscriptions.GetByClientAndPlan(ctx, clientID, planID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: leer suscripción previa: %v", domain.ErrTransientStore, err)
	}
	if prev != nil {
		prev.Status = entity.SubscriptionActive
		prev.Amount = plan.Price
		prev.UpdatedAt = s.now()
		if invoiceID != "" {
			prev.InvoiceID = &invoiceID
		}
		if err := r.Subscriptions.Update(ctx, prev); err != nil {
			return nil, "", fmt.Errorf("%w: reactivar suscripción: %v", domain.ErrTransientStore, err)
		}
		return prev, StepReused, nil
	}

	now := s.now()
	sub := &entity.Subscription{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		PlanID:    planID,
		Status:    entity.SubscriptionActive,
		Cadence:   entity.CadenceMonthly,
		Amount:    plan.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if invoiceID != "" {
		sub.InvoiceID = &invoiceID
	}
	if err := r.Subscriptions.Create(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateConflict) {
			winner, gerr := r.Subscriptions.GetByClientAndPlan(ctx, clientID, planID)
			if gerr != nil || winner == nil {
				return nil, "", fmt.Errorf("%w: releer suscripción: %v", domain.ErrTransientStore, gerr)
			}
			if err := s.ensureInvoiceLink(ctx, r, winner, invoiceID); err != nil {
				return nil, "", err
			}
			return winner, StepReused, nil
		}
		return nil, "", fmt.Errorf("%w: insertar suscripción: %v", domain.ErrTransientStore, err)
	}
	return sub, StepCreated, nil
}

// ensureInvoiceLink apunta la suscripción a la factura del pago si aún no lo está.
func (s *SubscriptionStep) ensureInvoiceLink(ctx context.Context, r StepRepos, sub *entity.Subscription, invoiceID string) error {
	if invoiceID == "" {
		return nil
	}
	if sub.InvoiceID != nil && *sub.InvoiceID == invoiceID {
		return nil
	}
	sub.InvoiceID = &invoiceID
	sub.UpdatedAt = s.now()
	if err := r.Subscriptions.Update(ctx, sub); err != nil {
		return fmt.Errorf("%w: enlazar factura a suscripción: %v", domain.ErrTransientStore, err)
	}
	return nil
}
