package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice representa la factura emitida por un pago.
// Invariante: a lo sumo una factura por pago (unique payment_id).
// El número es único global, formato INV-YYYYMMDD-XXXXXXXX, y se valida
// antes del insert: nunca se inserta con número o montos vacíos.
type Invoice struct {
	ID        string
	PaymentID string
	Number    string
	AmountHT  decimal.Decimal
	AmountTVA decimal.Decimal
	AmountTTC decimal.Decimal
	CreatedAt time.Time
}
