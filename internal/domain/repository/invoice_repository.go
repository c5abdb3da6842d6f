package repository

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// InvoiceRepository puerto de facturas.
type InvoiceRepository interface {
	// GetByPaymentID obtiene la factura de un pago. Retorna (nil, nil) si no existe.
	GetByPaymentID(ctx context.Context, paymentID string) (*entity.Invoice, error)
	// CountByNumber cuenta las facturas con ese número. Se usa para validar
	// unicidad del número ANTES del insert; retorna entero, nunca booleano.
	CountByNumber(ctx context.Context, number string) (int, error)
	// Create persiste la factura. Retorna domain.ErrDuplicateConflict si el
	// pago ya tiene factura o el número ya existe.
	Create(ctx context.Context, invoice *entity.Invoice) error
}
