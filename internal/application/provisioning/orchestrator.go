package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Orchestrator punto de entrada del saga de aprovisionamiento post-pago.
// Secuencia resolver → factura → suscripción → espacio → elevación de rol,
// agrega fallos parciales en un solo Outcome y es seguro de invocar
// repetidamente para el mismo pago (entrega at-least-once).
type Orchestrator struct {
	payments repository.PaymentRepository
	resolver *Resolver
	invoice  *InvoiceStep
	subs     *SubscriptionStep
	spaces   *MemberSpaceStep
	roles    *RoleStep
	txRunner TxRunner
	diag     *Diagnostic
	log      zerolog.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	txRunner TxRunner,
	payments repository.PaymentRepository,
	resolver *Resolver,
	invoice *InvoiceStep,
	subs *SubscriptionStep,
	spaces *MemberSpaceStep,
	roles *RoleStep,
	log zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		payments: payments,
		resolver: resolver,
		invoice:  invoice,
		subs:     subs,
		spaces:   spaces,
		roles:    roles,
		txRunner: txRunner,
		log:      log,
	}
}

// WithDiagnostic habilita la verificación post-hoc de cada corrida contra el
// reporte de diagnóstico (solo lectura; discrepancias se loguean, no abortan).
func (o *Orchestrator) WithDiagnostic(d *Diagnostic) *Orchestrator {
	o.diag = d
	return o
}

// Provision ejecuta el saga para un pago en estado paid. La precondición de
// cada paso que falla es un salto, no un aborto: siempre se intentan los
// pasos siguientes. Cada paso corre en su propia transacción.
func (o *Orchestrator) Provision(ctx context.Context, paymentID string) (*Outcome, error) {
	payment, err := o.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: leer pago: %v", domain.ErrTransientStore, err)
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: pago %s", domain.ErrNotFound, paymentID)
	}
	if !payment.IsPaid() {
		return nil, fmt.Errorf("%w: el pago %s está en estado %s, no paid", domain.ErrConflict, paymentID, payment.Status)
	}

	out := newOutcome(paymentID)
	o.log.Info().Str("payment_id", paymentID).Msg("saga de aprovisionamiento iniciado")

	// Paso 1: resolver referencias. Solo un fallo de infraestructura o la
	// incapacidad total de obtener el par empresa/cliente es terminal.
	refs, defs, err := o.resolver.Resolve(ctx, payment)
	out.Refs = refs
	if err != nil {
		out.addStep(StepResolve, StepFailed, err.Error(), "")
		out.State = StateFailed
		o.logStep(paymentID, StepResolve, StepFailed, err.Error())
		return out, err
	}
	for _, d := range defs {
		out.addDeficiency(d.Field, d.Reason)
	}
	if refs.EnterpriseID == nil && refs.ClientID == nil {
		out.addStep(StepResolve, StepFailed, "sin par empresa/cliente resoluble", "")
		out.addStep(StepInvoice, StepSkipped, "requiere resolución", "")
		out.addStep(StepSubscribe, StepSkipped, "requiere resolución", "")
		out.addStep(StepMemberSpace, StepSkipped, "requiere resolución", "")
		out.addStep(StepElevateRole, StepSkipped, "requiere resolución", "")
		out.State = StateFailed
		o.logStep(paymentID, StepResolve, StepFailed, "sin par empresa/cliente resoluble")
		return out, nil
	}
	out.State = StateResolved

	// Paso 2: factura (su éxito habilita PARTIAL en vez de FAILED y dispara
	// la marca paid de la empresa).
	var invRes invoiceResult
	err = o.txRunner.RunStep(ctx, func(r StepRepos) error {
		var e error
		invRes, e = o.invoice.Provision(ctx, r, payment, refs)
		return e
	})
	invoiceOK := err == nil
	invoiceID := ""
	if err != nil {
		out.addStep(StepInvoice, StepFailed, err.Error(), "")
		o.logStep(paymentID, StepInvoice, StepFailed, err.Error())
	} else {
		invoiceID = invRes.invoice.ID
		status := StepReused
		if invRes.created {
			status = StepCreated
		}
		out.addStep(StepInvoice, status, "", invoiceID)
		out.EnterpriseMarkedPaid = invRes.enterpriseMarked
		out.State = StateInvoiced
		o.logStep(paymentID, StepInvoice, status, "")
	}

	// Paso 3: suscripción. Requiere cliente, plan y la factura del paso 2.
	var sub *entity.Subscription
	switch {
	case refs.ClientID == nil:
		out.addStep(StepSubscribe, StepSkipped, "MissingReference(client_id)", "")
	case refs.PlanID == nil:
		out.addStep(StepSubscribe, StepSkipped, "MissingReference(plan_id)", "")
	case !invoiceOK:
		// La salida de la factura es estrictamente requerida por el enlace.
		out.addStep(StepSubscribe, StepSkipped, "requiere factura", "")
	default:
		var status string
		err := o.txRunner.RunStep(ctx, func(r StepRepos) error {
			var e error
			sub, status, e = o.subs.Provision(ctx, r, *refs.ClientID, *refs.PlanID, invoiceID)
			return e
		})
		switch {
		case err == nil:
			out.addStep(StepSubscribe, status, "", sub.ID)
			out.State = StateSubscribed
			o.logStep(paymentID, StepSubscribe, status, "")
		case errors.Is(err, domain.ErrMissingReference):
			out.addStep(StepSubscribe, StepSkipped, "MissingReference(plan_id)", "")
			out.addDeficiency("plan_id", err.Error())
			o.logStep(paymentID, StepSubscribe, StepSkipped, err.Error())
		default:
			out.addStep(StepSubscribe, StepFailed, err.Error(), "")
			o.logStep(paymentID, StepSubscribe, StepFailed, err.Error())
		}
	}

	// Paso 4: espacio de miembro. Solo requiere cliente; corre aunque la
	// suscripción se haya saltado (el enlace queda nil y se reconcilia luego).
	if refs.ClientID == nil {
		out.addStep(StepMemberSpace, StepSkipped, "MissingReference(client_id)", "")
	} else {
		var subID *string
		if sub != nil {
			subID = &sub.ID
		}
		var space *entity.MemberSpace
		var status string
		err := o.txRunner.RunStep(ctx, func(r StepRepos) error {
			var e error
			space, status, e = o.spaces.Provision(ctx, r, refs, subID)
			return e
		})
		if err != nil {
			out.addStep(StepMemberSpace, StepFailed, err.Error(), "")
			o.logStep(paymentID, StepMemberSpace, StepFailed, err.Error())
		} else {
			out.addStep(StepMemberSpace, status, "", space.ID)
			out.State = StateSpaced
			o.logStep(paymentID, StepMemberSpace, status, "")
		}
	}

	// Paso 5: elevación de rol. Corre al final, independiente de 3 y 4.
	o.runRoleStep(ctx, out, refs)

	out.State = finalState(out, invoiceOK)
	o.log.Info().
		Str("payment_id", paymentID).
		Str("state", out.State).
		Int("deficiencies", len(out.Deficiencies)).
		Msg("saga de aprovisionamiento terminado")

	o.verify(ctx, out)
	return out, nil
}

func (o *Orchestrator) runRoleStep(ctx context.Context, out *Outcome, refs ResolvedRefs) {
	switch {
	case refs.PlanID == nil:
		out.addStep(StepElevateRole, StepSkipped, "MissingReference(plan_id)", "")
		return
	case refs.EnterpriseID == nil:
		out.addStep(StepElevateRole, StepSkipped, "MissingReference(enterprise_id)", "")
		return
	}

	var target *entity.Principal
	var status string
	err := o.txRunner.RunStep(ctx, func(r StepRepos) error {
		var e error
		target, status, e = o.roles.Elevate(ctx, r, refs)
		return e
	})
	switch {
	case err == nil:
		out.addStep(StepElevateRole, status, "", target.ID)
		// El objetivo quedó identificado: la deficiencia del resolver sobre
		// principal_id ya no aplica.
		out.removeDeficiency("principal_id")
		out.State = StateElevated
		o.logStep(out.PaymentID, StepElevateRole, status, "")
	case errors.Is(err, errPlanWithoutElevation):
		// Salto benigno: no es deficiencia, el plan simplemente no eleva.
		out.addStep(StepElevateRole, StepSkipped, err.Error(), "")
		out.removeDeficiency("principal_id")
		o.logStep(out.PaymentID, StepElevateRole, StepSkipped, err.Error())
	case errors.Is(err, domain.ErrAmbiguousElevationTarget):
		out.addStep(StepElevateRole, StepSkipped, "AmbiguousElevationTarget(principal_id)", "")
		out.addDeficiency("principal_id", err.Error())
		o.logStep(out.PaymentID, StepElevateRole, StepSkipped, err.Error())
	case errors.Is(err, domain.ErrMissingReference):
		out.addStep(StepElevateRole, StepSkipped, "MissingReference(principal_id)", "")
		out.addDeficiency("principal_id", err.Error())
		o.logStep(out.PaymentID, StepElevateRole, StepSkipped, err.Error())
	default:
		out.addStep(StepElevateRole, StepFailed, err.Error(), "")
		o.logStep(out.PaymentID, StepElevateRole, StepFailed, err.Error())
	}
}

// finalState agrega el estado terminal: FAILED si la factura no quedó creada,
// PARTIAL ante cualquier paso fallido o deficiencia pendiente, DONE si todos
// los pasos aplicables quedaron created/reused.
func finalState(out *Outcome, invoiceOK bool) string {
	if !invoiceOK {
		return StateFailed
	}
	for _, s := range out.Steps {
		if s.Status == StepFailed {
			return StatePartial
		}
	}
	if len(out.Deficiencies) > 0 {
		return StatePartial
	}
	return StateDone
}

// verify contrasta el outcome con el snapshot de diagnóstico (si está
// habilitado). Una discrepancia indica un bug de idempotencia y se loguea.
func (o *Orchestrator) verify(ctx context.Context, out *Outcome) {
	if o.diag == nil {
		return
	}
	snap, err := o.diag.ByPayment(ctx, out.PaymentID)
	if err != nil {
		o.log.Warn().Err(err).Str("payment_id", out.PaymentID).Msg("verificación post-hoc no disponible")
		return
	}
	invoiceStatus := out.stepStatus(StepInvoice)
	if (invoiceStatus == StepCreated || invoiceStatus == StepReused) && !snap.InvoiceExists {
		o.log.Error().Str("payment_id", out.PaymentID).Msg("outcome reporta factura pero el diagnóstico no la ve")
	}
	subStatus := out.stepStatus(StepSubscribe)
	if (subStatus == StepCreated || subStatus == StepReused) && !snap.SubscriptionExists {
		o.log.Error().Str("payment_id", out.PaymentID).Msg("outcome reporta suscripción pero el diagnóstico no la ve")
	}
}

func (o *Orchestrator) logStep(paymentID, step, status, reason string) {
	evt := o.log.Info()
	if status == StepFailed {
		evt = o.log.Error()
	}
	evt.Str("payment_id", paymentID).
		Str("step", step).
		Str("status", status).
		Str("reason", reason).
		Msg("paso del saga")
}
