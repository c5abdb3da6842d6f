package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// PrincipalRepository puerto del directorio de cuentas.
type PrincipalRepository interface {
	// GetByID obtiene un principal por ID. Retorna (nil, nil) si no existe.
	GetByID(ctx context.Context, id string) (*entity.Principal, error)
	// ListByEmail lista los principales con ese email. El elevador de roles
	// necesita la lista completa para detectar ambigüedad (dos o más matches).
	ListByEmail(ctx context.Context, email string) ([]*entity.Principal, error)
	// UpdateRole actualiza el rol en el único lugar de registro.
	UpdateRole(ctx context.Context, id, role string) error
}
