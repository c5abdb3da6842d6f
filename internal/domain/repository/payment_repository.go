package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// PaymentRepository puerto de lectura de pagos. El saga nunca escribe pagos.
type PaymentRepository interface {
	// GetByID obtiene un pago por ID. Retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Payment, error)
	// ListByEnterprise lista los pagos de una empresa, más reciente primero.
	// Lo usa el resolver para inferir referencias desde pagos hermanos.
	ListByEnterprise(ctx context.Context, enterpriseID string) ([]*entity.Payment, error)
	// ListByClient lista los pagos de un cliente, más reciente primero.
	ListByClient(ctx context.Context, clientID string) ([]*entity.Payment, error)
}
