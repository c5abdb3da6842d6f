package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados válidos para Payment.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusPaid      = "paid"
	PaymentStatusRefunded  = "refunded"
	PaymentStatusCancelled = "cancelled"
)

// Payment representa un pago registrado por el flujo de checkout.
// Los FKs directos son opcionales: pagos antiguos o creados por herramientas
// externas pueden traer solo pistas en Notes (JSON o texto libre).
// El saga de aprovisionamiento nunca crea ni elimina pagos.
type Payment struct {
	ID             string
	EnterpriseID   *string // FK directo opcional
	ClientID       *string // FK directo opcional
	AmountHT       decimal.Decimal
	AmountTVA      decimal.Decimal
	AmountTTC      decimal.Decimal
	Status         string // pending, paid, refunded, cancelled
	Notes          string // texto libre; puede traer plan_id, enterprise_id, client_id
	TransactionRef string // referencia del procesador externo (vacía si no aplica)
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsPaid informa si el pago está en estado paid.
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}
