package provisioning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del orquestador: idempotencia de la corrida completa, saltos en vez de
// abortos, agregación del estado terminal y progreso monótono entre corridas.
// ──────────────────────────────────────────────────────────────────────────────

func buildOrchestrator(f *fixture) *Orchestrator {
	return NewOrchestrator(
		&fakeTxRunner{f: f},
		f.payments,
		NewResolver(f.readRepos()),
		NewInvoiceStep("INV", 5),
		NewSubscriptionStep(),
		NewMemberSpaceStep(),
		NewRoleStep(),
		zerolog.Nop(),
	)
}

// escenarioCompleto deja un pago pagado con todas las referencias resolubles:
// FKs directas a empresa y cliente, plan en notes, principal por email.
func escenarioCompleto(f *fixture) {
	f.enterprises.items["emp-1"] = &entity.Enterprise{
		ID: "emp-1", Name: "Acme", PaymentStatus: entity.EnterpriseUnpaid,
		OwnerPrincipalID: strPtr("pri-1"),
	}
	f.clients.items["cli-1"] = &entity.Client{ID: "cli-1", EnterpriseID: "emp-1", Email: "ana@acme.co"}
	f.plans.items["plan-1"] = planConAdmin("plan-1")
	f.principals.items["pri-1"] = &entity.Principal{ID: "pri-1", Email: "ana@acme.co", Role: entity.RoleMember}

	f.payments.items["pay-1"] = &entity.Payment{
		ID:           "pay-1",
		EnterpriseID: strPtr("emp-1"),
		ClientID:     strPtr("cli-1"),
		AmountHT:     decimal.NewFromInt(100),
		AmountTVA:    decimal.NewFromInt(19),
		AmountTTC:    decimal.NewFromInt(119),
		Status:       entity.PaymentStatusPaid,
		Notes:        `{"plan_id":"plan-1"}`,
		CreatedAt:    time.Now(),
	}
}

func TestOrchestrator_CorridaCompletaCreaTodo(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, StepCreated, out.stepStatus(StepInvoice))
	assert.Equal(t, StepCreated, out.stepStatus(StepSubscribe))
	assert.Equal(t, StepCreated, out.stepStatus(StepMemberSpace))
	assert.Equal(t, StepCreated, out.stepStatus(StepElevateRole))
	assert.Empty(t, out.Deficiencies)
	assert.True(t, out.EnterpriseMarkedPaid)

	assert.Equal(t, entity.EnterprisePaid, f.enterprises.items["emp-1"].PaymentStatus)
	assert.Equal(t, entity.RoleEnterpriseAdmin, f.principals.items["pri-1"].Role)
	assert.Len(t, f.invoices.items, 1)
	assert.Len(t, f.subscriptions.items, 1)
	assert.Len(t, f.spaces.items, 1)
}

// Dos corridas del mismo pago: la segunda reusa todo y no duplica nada.
// Es el contrato del trigger at-least-once.
func TestOrchestrator_SegundaCorridaReusaTodo(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	o := buildOrchestrator(f)

	_, err := o.Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	out, err := o.Provision(context.Background(), "pay-1")
	require.NoError(t, err)

	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, StepReused, out.stepStatus(StepInvoice))
	assert.Equal(t, StepReused, out.stepStatus(StepSubscribe))
	assert.Equal(t, StepReused, out.stepStatus(StepMemberSpace))
	assert.Equal(t, StepReused, out.stepStatus(StepElevateRole))

	assert.Len(t, f.invoices.items, 1, "una sola factura tras dos corridas")
	assert.Len(t, f.subscriptions.items, 1, "una sola suscripción tras dos corridas")
	assert.Len(t, f.spaces.items, 1, "un solo espacio tras dos corridas")
}

// Plan irresoluble: la suscripción se salta con la razón tipada, el espacio se
// crea igual con solo el baseline, y el estado queda PARTIAL con la deficiencia.
func TestOrchestrator_PlanIrresoluble_Partial(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	f.payments.items["pay-1"].Notes = "sin pistas útiles"

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err)

	assert.Equal(t, StatePartial, out.State)
	assert.Equal(t, StepCreated, out.stepStatus(StepInvoice))
	assert.Equal(t, StepSkipped, out.stepStatus(StepSubscribe))
	for _, s := range out.Steps {
		if s.Step == StepSubscribe {
			assert.Equal(t, "MissingReference(plan_id)", s.Reason)
		}
	}
	assert.Equal(t, StepCreated, out.stepStatus(StepMemberSpace))
	assert.Equal(t, StepSkipped, out.stepStatus(StepElevateRole))

	space := f.spaces.items["cli-1"]
	require.NotNil(t, space)
	assert.ElementsMatch(t, entity.BaselineModules(), space.ActiveModules,
		"sin plan el espacio solo tiene el baseline")
	assert.Nil(t, space.SubscriptionID)

	fields := make([]string, 0, len(out.Deficiencies))
	for _, d := range out.Deficiencies {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "plan_id")
}

// Fallo de almacén en la factura: el estado es FAILED, la suscripción se salta
// (requiere la factura) pero el espacio igual se intenta.
func TestOrchestrator_FacturaFalla_Failed(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	f.invoices.err = errors.New("db caída")

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err, "el fallo de un paso se agrega al outcome, no se propaga")

	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, StepFailed, out.stepStatus(StepInvoice))
	assert.Equal(t, StepSkipped, out.stepStatus(StepSubscribe))
	assert.Equal(t, StepCreated, out.stepStatus(StepMemberSpace),
		"el espacio no depende de la factura")
	assert.False(t, out.EnterpriseMarkedPaid)
}

// Pago sin par empresa/cliente resoluble: todos los pasos saltados, FAILED,
// sin error (la reinvocación posterior puede encontrar más datos).
func TestOrchestrator_SinReferencias_Failed(t *testing.T) {
	f := newFixture()
	f.payments.items["pay-1"] = &entity.Payment{
		ID: "pay-1", Status: entity.PaymentStatusPaid, Notes: "gracias",
		AmountHT: decimal.NewFromInt(10), CreatedAt: time.Now(),
	}

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, out.State)
	for _, step := range []string{StepInvoice, StepSubscribe, StepMemberSpace, StepElevateRole} {
		assert.Equal(t, StepSkipped, out.stepStatus(step), "paso %s", step)
	}
	assert.Empty(t, f.invoices.items)
}

func TestOrchestrator_PagoInexistente(t *testing.T) {
	f := newFixture()
	_, err := buildOrchestrator(f).Provision(context.Background(), "pay-nada")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrchestrator_PagoNoPagado(t *testing.T) {
	f := newFixture()
	f.payments.items["pay-1"] = &entity.Payment{ID: "pay-1", Status: entity.PaymentStatusPending}

	_, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Progreso monótono: una corrida con la suscripción caída deja PARTIAL; la
// siguiente conserva lo creado, completa lo que faltaba y enlaza el espacio.
func TestOrchestrator_ProgresoMonotonoEntreCorridas(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	o := buildOrchestrator(f)

	f.subscriptions.createErr = errors.New("disco lleno")
	out1, err := o.Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StatePartial, out1.State)
	assert.Equal(t, StepCreated, out1.stepStatus(StepInvoice))
	assert.Equal(t, StepFailed, out1.stepStatus(StepSubscribe))
	assert.Equal(t, StepCreated, out1.stepStatus(StepMemberSpace))
	require.NotNil(t, f.spaces.items["cli-1"])
	assert.Nil(t, f.spaces.items["cli-1"].SubscriptionID,
		"el espacio queda sin enlace hasta que exista la suscripción")

	f.subscriptions.createErr = nil
	out2, err := o.Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StateDone, out2.State)
	assert.Equal(t, StepReused, out2.stepStatus(StepInvoice), "lo creado antes se reusa, nunca se rehace")
	assert.Equal(t, StepCreated, out2.stepStatus(StepSubscribe))
	assert.Equal(t, StepReused, out2.stepStatus(StepMemberSpace))
	require.NotNil(t, f.spaces.items["cli-1"].SubscriptionID)
	assert.Len(t, f.invoices.items, 1)
}

// El salto benigno del rol (plan sin elevación) no impide DONE.
func TestOrchestrator_PlanSinElevacion_Done(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	f.plans.items["plan-1"].GrantsEnterpriseAdmin = false

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StateDone, out.State)
	assert.Equal(t, StepSkipped, out.stepStatus(StepElevateRole))
	assert.Equal(t, entity.RoleMember, f.principals.items["pri-1"].Role)
}

// Email ambiguo en la elevación: el rol se salta con razón tipada y el estado
// queda PARTIAL por la deficiencia de principal.
func TestOrchestrator_ElevacionAmbigua_Partial(t *testing.T) {
	f := newFixture()
	escenarioCompleto(f)
	f.enterprises.items["emp-1"].OwnerPrincipalID = nil
	f.principals.items["pri-2"] = &entity.Principal{ID: "pri-2", Email: "ana@acme.co", Role: entity.RoleMember}

	out, err := buildOrchestrator(f).Provision(context.Background(), "pay-1")
	require.NoError(t, err)
	assert.Equal(t, StatePartial, out.State)
	assert.Equal(t, StepSkipped, out.stepStatus(StepElevateRole))
	for _, s := range out.Steps {
		if s.Step == StepElevateRole {
			assert.Equal(t, "AmbiguousElevationTarget(principal_id)", s.Reason)
		}
	}
	assert.Empty(t, f.principals.roleUpdates, "ante ambigüedad ningún rol se escribe")
}
