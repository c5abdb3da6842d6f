package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// ClientRepository puerto de solo lectura de clientes.
type ClientRepository interface {
	// GetByID obtiene un cliente por ID. Retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	// ListByEnterprise lista los clientes de una empresa.
	ListByEnterprise(ctx context.Context, enterpriseID string) ([]*entity.Client, error)
}
