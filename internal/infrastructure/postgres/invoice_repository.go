package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// GetByPaymentID obtiene la factura de un pago (unique payment_id).
func (r *InvoiceRepo) GetByPaymentID(ctx context.Context, paymentID string) (*entity.Invoice, error) {
	query := `
		SELECT id, payment_id, number, amount_ht, amount_tva, amount_ttc, created_at
		FROM invoices WHERE payment_id = $1`
	var inv entity.Invoice
	err := r.q.QueryRow(ctx, query, paymentID).Scan(
		&inv.ID, &inv.PaymentID, &inv.Number,
		&inv.AmountHT, &inv.AmountTVA, &inv.AmountTTC, &inv.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by payment: %w", err)
	}
	return &inv, nil
}

// CountByNumber cuenta facturas con el número dado (validación pre-insert).
func (r *InvoiceRepo) CountByNumber(ctx context.Context, number string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE number = $1`, number).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices by number: %w", err)
	}
	return n, nil
}

// Create persiste la factura. El constraint único sobre payment_id (y sobre
// number) convierte la carrera entre dos corridas en ErrDuplicateConflict.
func (r *InvoiceRepo) Create(ctx context.Context, invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (id, payment_id, number, amount_ht, amount_tva, amount_ttc, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		invoice.ID, invoice.PaymentID, invoice.Number,
		invoice.AmountHT, invoice.AmountTVA, invoice.AmountTTC, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura para pago %s: %v", domain.ErrDuplicateConflict, invoice.PaymentID, err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}
