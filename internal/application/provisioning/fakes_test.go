package provisioning

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria de los puertos de repositorio. Cada fake admite inyección
// de error (campo err) para simular fallos de infraestructura.
// ──────────────────────────────────────────────────────────────────────────────

func strPtr(s string) *string { return &s }

type fakePaymentRepo struct {
	items map[string]*entity.Payment
	err   error
}

func (f *fakePaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakePaymentRepo) ListByEnterprise(_ context.Context, enterpriseID string) ([]*entity.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Payment
	for _, p := range f.items {
		if p.EnterpriseID != nil && *p.EnterpriseID == enterpriseID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePaymentRepo) ListByClient(_ context.Context, clientID string) ([]*entity.Payment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Payment
	for _, p := range f.items {
		if p.ClientID != nil && *p.ClientID == clientID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeEnterpriseRepo struct {
	items map[string]*entity.Enterprise
	// marked registra cada UpdatePaymentStatus (id -> status aplicado).
	marked []string
	err    error
}

func (f *fakeEnterpriseRepo) GetByID(_ context.Context, id string) (*entity.Enterprise, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakeEnterpriseRepo) UpdatePaymentStatus(_ context.Context, id, status string) error {
	if f.err != nil {
		return f.err
	}
	if e, ok := f.items[id]; ok {
		e.PaymentStatus = status
	}
	f.marked = append(f.marked, id+"="+status)
	return nil
}

type fakeClientRepo struct {
	items map[string]*entity.Client
	err   error
}

func (f *fakeClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakeClientRepo) ListByEnterprise(_ context.Context, enterpriseID string) ([]*entity.Client, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Client
	for _, c := range f.items {
		if c.EnterpriseID == enterpriseID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakePlanRepo struct {
	items map[string]*entity.Plan
	err   error
}

func (f *fakePlanRepo) GetByID(_ context.Context, id string) (*entity.Plan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

type fakeInvoiceRepo struct {
	items map[string]*entity.Invoice // por ID
	err   error
	// collideFirst hace que los primeros N CountByNumber reporten colisión,
	// para ejercitar el reintento de asignación de número.
	collideFirst int
	countCalls   int
	// onCreate, si está seteado, reemplaza el insert (simula carreras).
	onCreate func(inv *entity.Invoice) error
}

func (f *fakeInvoiceRepo) GetByPaymentID(_ context.Context, paymentID string) (*entity.Invoice, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, inv := range f.items {
		if inv.PaymentID == paymentID {
			return inv, nil
		}
	}
	return nil, nil
}

func (f *fakeInvoiceRepo) CountByNumber(_ context.Context, number string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.countCalls++
	if f.countCalls <= f.collideFirst {
		return 1, nil
	}
	n := 0
	for _, inv := range f.items {
		if inv.Number == number {
			n++
		}
	}
	return n, nil
}

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *entity.Invoice) error {
	if f.err != nil {
		return f.err
	}
	if f.onCreate != nil {
		return f.onCreate(invoice)
	}
	for _, inv := range f.items {
		if inv.PaymentID == invoice.PaymentID || inv.Number == invoice.Number {
			return domain.ErrDuplicateConflict
		}
	}
	f.items[invoice.ID] = invoice
	return nil
}

type fakeSubscriptionRepo struct {
	items     []*entity.Subscription
	err       error
	createErr error
	// onCreate, si está seteado, reemplaza el insert (simula carreras).
	onCreate func(sub *entity.Subscription) error
}

func (f *fakeSubscriptionRepo) GetByClientAndPlan(_ context.Context, clientID, planID string) (*entity.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	var latest *entity.Subscription
	for _, s := range f.items {
		if s.ClientID != clientID || s.PlanID != planID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeSubscriptionRepo) CountActiveByClientAndPlan(_ context.Context, clientID, planID string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := 0
	for _, s := range f.items {
		if s.ClientID == clientID && s.PlanID == planID && s.Status == entity.SubscriptionActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeSubscriptionRepo) Create(_ context.Context, sub *entity.Subscription) error {
	if f.err != nil {
		return f.err
	}
	if f.createErr != nil {
		return f.createErr
	}
	if f.onCreate != nil {
		return f.onCreate(sub)
	}
	for _, s := range f.items {
		if s.ClientID == sub.ClientID && s.PlanID == sub.PlanID && s.Status == entity.SubscriptionActive {
			return domain.ErrDuplicateConflict
		}
	}
	f.items = append(f.items, sub)
	return nil
}

func (f *fakeSubscriptionRepo) Update(_ context.Context, sub *entity.Subscription) error {
	if f.err != nil {
		return f.err
	}
	for i, s := range f.items {
		if s.ID == sub.ID {
			f.items[i] = sub
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeSpaceRepo struct {
	items map[string]*entity.MemberSpace // por clientID
	err   error
	// onCreate, si está seteado, reemplaza el insert (simula carreras).
	onCreate func(space *entity.MemberSpace) error
}

func (f *fakeSpaceRepo) GetByClient(_ context.Context, clientID string) (*entity.MemberSpace, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[clientID], nil
}

func (f *fakeSpaceRepo) Create(_ context.Context, space *entity.MemberSpace) error {
	if f.err != nil {
		return f.err
	}
	if f.onCreate != nil {
		return f.onCreate(space)
	}
	if _, ok := f.items[space.ClientID]; ok {
		return domain.ErrDuplicateConflict
	}
	f.items[space.ClientID] = space
	return nil
}

func (f *fakeSpaceRepo) Update(_ context.Context, space *entity.MemberSpace) error {
	if f.err != nil {
		return f.err
	}
	f.items[space.ClientID] = space
	return nil
}

type fakePrincipalRepo struct {
	items map[string]*entity.Principal
	// roleUpdates registra cada UpdateRole (id -> rol aplicado).
	roleUpdates []string
	err         error
}

func (f *fakePrincipalRepo) GetByID(_ context.Context, id string) (*entity.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items[id], nil
}

func (f *fakePrincipalRepo) ListByEmail(_ context.Context, email string) ([]*entity.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Principal
	for _, p := range f.items {
		if strings.EqualFold(p.Email, email) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePrincipalRepo) UpdateRole(_ context.Context, id, role string) error {
	if f.err != nil {
		return f.err
	}
	p, ok := f.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Role = role
	f.roleUpdates = append(f.roleUpdates, id+"="+role)
	return nil
}

// fixture agrupa los fakes y expone los sets de repos que consumen el saga y
// el diagnóstico. El txRunner de test invoca el callback directamente (no hay
// transacción real que abrir).
type fixture struct {
	payments      *fakePaymentRepo
	enterprises   *fakeEnterpriseRepo
	clients       *fakeClientRepo
	plans         *fakePlanRepo
	invoices      *fakeInvoiceRepo
	subscriptions *fakeSubscriptionRepo
	spaces        *fakeSpaceRepo
	principals    *fakePrincipalRepo
}

func newFixture() *fixture {
	return &fixture{
		payments:      &fakePaymentRepo{items: map[string]*entity.Payment{}},
		enterprises:   &fakeEnterpriseRepo{items: map[string]*entity.Enterprise{}},
		clients:       &fakeClientRepo{items: map[string]*entity.Client{}},
		plans:         &fakePlanRepo{items: map[string]*entity.Plan{}},
		invoices:      &fakeInvoiceRepo{items: map[string]*entity.Invoice{}},
		subscriptions: &fakeSubscriptionRepo{},
		spaces:        &fakeSpaceRepo{items: map[string]*entity.MemberSpace{}},
		principals:    &fakePrincipalRepo{items: map[string]*entity.Principal{}},
	}
}

func (f *fixture) stepRepos() StepRepos {
	return StepRepos{
		Payments:      f.payments,
		Enterprises:   f.enterprises,
		Clients:       f.clients,
		Plans:         f.plans,
		Invoices:      f.invoices,
		Subscriptions: f.subscriptions,
		Spaces:        f.spaces,
		Principals:    f.principals,
	}
}

func (f *fixture) readRepos() ReadRepos {
	return ReadRepos{
		Payments:      f.payments,
		Enterprises:   f.enterprises,
		Clients:       f.clients,
		Plans:         f.plans,
		Invoices:      f.invoices,
		Subscriptions: f.subscriptions,
		Spaces:        f.spaces,
		Principals:    f.principals,
	}
}

type fakeTxRunner struct {
	f    *fixture
	runs int
}

func (t *fakeTxRunner) RunStep(_ context.Context, fn func(r StepRepos) error) error {
	t.runs++
	return fn(t.f.stepRepos())
}
