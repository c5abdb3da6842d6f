package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// PlanRepository puerto de solo lectura de planes.
type PlanRepository interface {
	// GetByID obtiene un plan por ID. Retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Plan, error)
}
