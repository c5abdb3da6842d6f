package provisioning

import (
	"context"

	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

// StepRepos agrupa los repositorios atados a una transacción para un paso
// del saga. Cada paso corre su chequeo de idempotencia y su escritura dentro
// de la misma tx, así dos invocaciones concurrentes del mismo pago no pueden
// pasar ambas el "no existe" y duplicar filas.
type StepRepos struct {
	Payments      repository.PaymentRepository
	Enterprises   repository.EnterpriseRepository
	Clients       repository.ClientRepository
	Plans         repository.PlanRepository
	Invoices      repository.InvoiceRepository
	Subscriptions repository.SubscriptionRepository
	Spaces        repository.MemberSpaceRepository
	Principals    repository.PrincipalRepository
}

// TxRunner ejecuta un paso del saga dentro de una transacción.
type TxRunner interface {
	RunStep(ctx context.Context, fn func(r StepRepos) error) error
}

// ReadRepos agrupa los repositorios de solo lectura (atados al pool) que usan
// el resolver y el reporte de diagnóstico. Nunca escriben.
type ReadRepos struct {
	Payments      repository.PaymentRepository
	Enterprises   repository.EnterpriseRepository
	Clients       repository.ClientRepository
	Plans         repository.PlanRepository
	Invoices      repository.InvoiceRepository
	Subscriptions repository.SubscriptionRepository
	Spaces        repository.MemberSpaceRepository
	Principals    repository.PrincipalRepository
}
