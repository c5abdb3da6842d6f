package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Suscripciones-api/internal/application/provisioning"
)

// Ensure TxRunner implements provisioning.TxRunner.
var _ provisioning.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta pasos del saga dentro de una transacción PostgreSQL.
// El chequeo de idempotencia y la escritura de cada paso comparten la tx,
// así dos corridas concurrentes del mismo pago no pueden duplicar filas.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunStep inicia una transacción, ejecuta fn con repos atados a la tx y hace
// Commit o Rollback.
func (r *TxRunner) RunStep(ctx context.Context, fn func(repos provisioning.StepRepos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := provisioning.StepRepos{
		Payments:      NewPaymentRepository(tx),
		Enterprises:   NewEnterpriseRepository(tx),
		Clients:       NewClientRepository(tx),
		Plans:         NewPlanRepository(tx),
		Invoices:      NewInvoiceRepository(tx),
		Subscriptions: NewSubscriptionRepository(tx),
		Spaces:        NewMemberSpaceRepository(tx),
		Principals:    NewPrincipalRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadRepos construye el set de repos de solo lectura atados al pool, para el
// resolver y el diagnóstico.
func ReadRepos(pool *pgxpool.Pool) provisioning.ReadRepos {
	return provisioning.ReadRepos{
		Payments:      NewPaymentRepository(pool),
		Enterprises:   NewEnterpriseRepository(pool),
		Clients:       NewClientRepository(pool),
		Plans:         NewPlanRepository(pool),
		Invoices:      NewInvoiceRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
		Spaces:        NewMemberSpaceRepository(pool),
		Principals:    NewPrincipalRepository(pool),
	}
}
