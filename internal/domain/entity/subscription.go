package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados y cadencias válidos para Subscription.
const (
	SubscriptionActive   = "active"
	SubscriptionInactive = "inactive"

	CadenceMonthly = "monthly"
	CadenceYearly  = "yearly"
)

// Subscription representa la suscripción de un cliente a un plan.
// Invariante: a lo sumo una suscripción activa por (cliente, plan)
// producida por un mismo pago. InvoiceID enlaza la factura que la originó.
type Subscription struct {
	ID        string
	ClientID  string
	PlanID    string
	InvoiceID *string // nil hasta que la factura quede enlazada
	Status    string  // active, inactive
	Cadence   string  // monthly, yearly
	Amount    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
