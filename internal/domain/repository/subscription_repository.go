package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// SubscriptionRepository puerto de suscripciones.
type SubscriptionRepository interface {
	// GetByClientAndPlan obtiene la suscripción más reciente del par
	// (cliente, plan), activa o no. Retorna (nil, nil) si no existe.
	GetByClientAndPlan(ctx context.Context, clientID, planID string) (*entity.Subscription, error)
	// CountActiveByClientAndPlan cuenta suscripciones activas del par
	// (cliente, plan). Retorna entero, nunca booleano.
	CountActiveByClientAndPlan(ctx context.Context, clientID, planID string) (int, error)
	// Create persiste una suscripción nueva. Retorna domain.ErrDuplicateConflict
	// si el par ya tiene una suscripción activa.
	Create(ctx context.Context, sub *entity.Subscription) error
	// Update actualiza estado, enlace de factura y monto.
	Update(ctx context.Context, sub *entity.Subscription) error
}
