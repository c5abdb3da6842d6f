package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// Snapshot estado observado de los pasos del saga para un pago, recomputado
// con los mismos chequeos de existencia de los provisioners. Pura lectura.
type Snapshot struct {
	PaymentID          string       `json:"payment_id"`
	InvoiceExists      bool         `json:"invoice_exists"`
	SubscriptionExists bool         `json:"subscription_exists"`
	MemberSpaceExists  bool         `json:"member_space_exists"`
	RoleElevated       bool         `json:"role_elevated"`
	Deficiencies       []Deficiency `json:"deficiencies"`
}

// Diagnostic reporte de introspección de solo lectura. Lo usan operadores y
// herramientas de reparación para decidir si reinvocar el orquestador; nunca
// muta estado.
type Diagnostic struct {
	repos    ReadRepos
	resolver *Resolver
}

// NewDiagnostic construye el reporte sobre repos atados al pool.
func NewDiagnostic(repos ReadRepos, resolver *Resolver) *Diagnostic {
	return &Diagnostic{repos: repos, resolver: resolver}
}

// ByPayment arma el snapshot para un pago.
func (d *Diagnostic) ByPayment(ctx context.Context, paymentID string) (*Snapshot, error) {
	payment, err := d.repos.Payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer pago: %v", domain.ErrTransientStore, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, paymentID)
	}

	refs, defs, err := d.resolver.Resolve(ctx, payment)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{PaymentID: paymentID, Deficiencies: []Deficiency{}}
	for _, def := range defs {
		snap.Deficiencies = append(snap.Deficiencies, def)
	}

	inv, err := d.repos.Invoices.GetByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: factura del pago: %v", domain.ErrTransientStore, err)
	}
	snap.InvoiceExists = inv != nil
	if inv == nil {
		snap.Deficiencies = append(snap.Deficiencies, Deficiency{Field: "invoice", Reason: "sin factura para el pago"})
	}

	if refs.ClientID != nil && refs.PlanID != nil {
		n, err := d.repos.Subscriptions.CountActiveByClientAndPlan(ctx, *refs.ClientID, *refs.PlanID)
		if err != nil {
			return nil, fmt.Errorf("%w: contar suscripciones: %v", domain.ErrTransientStore, err)
		}
		snap.SubscriptionExists = n > 0
		if n == 0 {
			snap.Deficiencies = append(snap.Deficiencies, Deficiency{Field: "subscription", Reason: "sin suscripción activa para cliente+plan"})
		}
	}

	if refs.ClientID != nil {
		space, err := d.repos.Spaces.GetByClient(ctx, *refs.ClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: espacio del cliente: %v", domain.ErrTransientStore, err)
		}
		snap.MemberSpaceExists = space != nil
		if space == nil {
			snap.Deficiencies = append(snap.Deficiencies, Deficiency{Field: "member_space", Reason: "sin espacio para el cliente"})
		}
	}

	// Elevación: misma resolución de candidato que el elevador, sin escribir.
	// Cero candidatos o empate dejan RoleElevated en false, no son fatales.
	target, err := resolveElevationTarget(ctx, d.repos.Principals, d.repos.Clients, d.repos.Enterprises, refs)
	if err != nil && errors.Is(err, domain.ErrTransientStore) {
		return nil, err
	}
	if target != nil {
		snap.RoleElevated = target.IsElevated()
	}

	return snap, nil
}

// ByEnterprise arma el snapshot del pago pagado más reciente de la empresa.
func (d *Diagnostic) ByEnterprise(ctx context.Context, enterpriseID string) (*Snapshot, error) {
	payments, err := d.repos.Payments.ListByEnterprise(ctx, enterpriseID)
	if err != nil {
		return nil, fmt.Errorf("%w: pagos de la empresa: %v", domain.ErrTransientStore, err)
	}
	for _, p := range payments {
		if p.Status == entity.PaymentStatusPaid {
			return d.ByPayment(ctx, p.ID)
		}
	}
	return nil, fmt.Errorf("%w: la empresa %s no tiene pagos en estado paid", domain.ErrNotFound, enterpriseID)
}
