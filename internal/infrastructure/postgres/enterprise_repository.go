package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.EnterpriseRepository = (*EnterpriseRepo)(nil)

// EnterpriseRepo implementación de EnterpriseRepository (usable con pool o tx).
type EnterpriseRepo struct {
	q Querier
}

// NewEnterpriseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEnterpriseRepository(q Querier) *EnterpriseRepo {
	return &EnterpriseRepo{q: q}
}

// GetByID obtiene una empresa por ID.
func (r *EnterpriseRepo) GetByID(ctx context.Context, id string) (*entity.Enterprise, error) {
	query := `
		SELECT id, name, payment_status, owner_principal_id, created_at, updated_at
		FROM enterprises WHERE id = $1`
	var e entity.Enterprise
	err := r.q.QueryRow(ctx, query, id).Scan(
		&e.ID, &e.Name, &e.PaymentStatus, &e.OwnerPrincipalID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enterprise: %w", err)
	}
	return &e, nil
}

// UpdatePaymentStatus actualiza el resumen unpaid/paid de la empresa.
// Idempotente: re-escribir el mismo estado es un no-op válido.
func (r *EnterpriseRepo) UpdatePaymentStatus(ctx context.Context, id, status string) error {
	query := `UPDATE enterprises SET payment_status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, status, time.Now())
	if err != nil {
		return fmt.Errorf("update enterprise payment status: %w", err)
	}
	return nil
}
