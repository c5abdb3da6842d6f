package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

// PaymentRepo implementación de PaymentRepository (usable con pool o tx).
// Solo lectura: los pagos los muta el flujo de checkout, nunca el saga.
type PaymentRepo struct {
	q Querier
}

// NewPaymentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPaymentRepository(q Querier) *PaymentRepo {
	return &PaymentRepo{q: q}
}

const paymentColumns = `
	id, enterprise_id, client_id, amount_ht, amount_tva, amount_ttc,
	status, COALESCE(notes, ''), COALESCE(transaction_ref, ''),
	created_at, updated_at`

// GetByID obtiene un pago por ID.
func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*entity.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE id = $1`
	p, err := scanPayment(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// ListByEnterprise lista los pagos de una empresa, más reciente primero.
func (r *PaymentRepo) ListByEnterprise(ctx context.Context, enterpriseID string) ([]*entity.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE enterprise_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, enterpriseID)
}

// ListByClient lista los pagos de un cliente, más reciente primero.
func (r *PaymentRepo) ListByClient(ctx context.Context, clientID string) ([]*entity.Payment, error) {
	query := `SELECT` + paymentColumns + ` FROM payments WHERE client_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, clientID)
}

func (r *PaymentRepo) list(ctx context.Context, query string, arg any) ([]*entity.Payment, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*entity.Payment, error) {
	var p entity.Payment
	err := row.Scan(
		&p.ID, &p.EnterpriseID, &p.ClientID,
		&p.AmountHT, &p.AmountTVA, &p.AmountTTC,
		&p.Status, &p.Notes, &p.TransactionRef,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
