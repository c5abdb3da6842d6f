package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.PrincipalRepository = (*PrincipalRepo)(nil)

// PrincipalRepo implementación de PrincipalRepository (usable con pool o tx).
type PrincipalRepo struct {
	q Querier
}

// NewPrincipalRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPrincipalRepository(q Querier) *PrincipalRepo {
	return &PrincipalRepo{q: q}
}

// GetByID obtiene un principal por ID.
func (r *PrincipalRepo) GetByID(ctx context.Context, id string) (*entity.Principal, error) {
	query := `
		SELECT id, email, name, role, status, created_at, updated_at
		FROM principals WHERE id = $1`
	var p entity.Principal
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Email, &p.Name, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get principal: %w", err)
	}
	return &p, nil
}

// ListByEmail lista principales con ese email (el elevador detecta ambigüedad
// cuando hay dos o más).
func (r *PrincipalRepo) ListByEmail(ctx context.Context, email string) ([]*entity.Principal, error) {
	query := `
		SELECT id, email, name, role, status, created_at, updated_at
		FROM principals WHERE lower(email) = lower($1)`
	rows, err := r.q.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("list principals by email: %w", err)
	}
	defer rows.Close()
	var list []*entity.Principal
	for rows.Next() {
		var p entity.Principal
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &p.Role, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan principal: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// UpdateRole actualiza el rol en el único lugar de registro (principals.role).
func (r *PrincipalRepo) UpdateRole(ctx context.Context, id, role string) error {
	query := `UPDATE principals SET role = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(ctx, query, id, role, time.Now())
	if err != nil {
		return fmt.Errorf("update principal role: %w", err)
	}
	return nil
}
