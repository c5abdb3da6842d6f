package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.MemberSpaceRepository = (*MemberSpaceRepo)(nil)

// MemberSpaceRepo implementación de MemberSpaceRepository (usable con pool o tx).
type MemberSpaceRepo struct {
	q Querier
}

// NewMemberSpaceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMemberSpaceRepository(q Querier) *MemberSpaceRepo {
	return &MemberSpaceRepo{q: q}
}

// GetByClient obtiene el espacio del cliente (unique client_id).
func (r *MemberSpaceRepo) GetByClient(ctx context.Context, clientID string) (*entity.MemberSpace, error) {
	query := `
		SELECT id, principal_id, client_id, subscription_id, active_modules, is_active, created_at, updated_at
		FROM member_spaces WHERE client_id = $1`
	var m entity.MemberSpace
	err := r.q.QueryRow(ctx, query, clientID).Scan(
		&m.ID, &m.PrincipalID, &m.ClientID, &m.SubscriptionID,
		&m.ActiveModules, &m.IsActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member space: %w", err)
	}
	return &m, nil
}

// Create persiste un espacio nuevo. El constraint único sobre client_id
// convierte la carrera en ErrDuplicateConflict.
func (r *MemberSpaceRepo) Create(ctx context.Context, space *entity.MemberSpace) error {
	query := `
		INSERT INTO member_spaces (id, principal_id, client_id, subscription_id, active_modules, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		space.ID, space.PrincipalID, space.ClientID, space.SubscriptionID,
		space.ActiveModules, space.IsActive, space.CreatedAt, space.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: espacio para cliente %s: %v", domain.ErrDuplicateConflict, space.ClientID, err)
		}
		return fmt.Errorf("insert member space: %w", err)
	}
	return nil
}

// Update actualiza principal, suscripción, módulos y flag activo.
func (r *MemberSpaceRepo) Update(ctx context.Context, space *entity.MemberSpace) error {
	query := `
		UPDATE member_spaces
		SET principal_id = $2, subscription_id = $3, active_modules = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(ctx, query,
		space.ID, space.PrincipalID, space.SubscriptionID,
		space.ActiveModules, space.IsActive, space.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update member space: %w", err)
	}
	return nil
}
