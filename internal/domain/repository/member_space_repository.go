package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// MemberSpaceRepository puerto de espacios de miembro.
type MemberSpaceRepository interface {
	// GetByClient obtiene el espacio del cliente. Retorna (nil, nil) si no existe.
	GetByClient(ctx context.Context, clientID string) (*entity.MemberSpace, error)
	// Create persiste un espacio nuevo. Retorna domain.ErrDuplicateConflict
	// si el cliente ya tiene espacio.
	Create(ctx context.Context, space *entity.MemberSpace) error
	// Update actualiza principal, suscripción, módulos activos y flag activo.
	Update(ctx context.Context, space *entity.MemberSpace) error
}
