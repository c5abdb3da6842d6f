package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// EnterpriseRepository puerto de empresas. El saga solo escribe el resumen
// de estado de pago.
type EnterpriseRepository interface {
	// GetByID obtiene una empresa por ID. Retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Enterprise, error)
	// UpdatePaymentStatus actualiza el resumen unpaid/paid de la empresa.
	UpdatePaymentStatus(ctx context.Context, id, status string) error
}
