package provisioning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// MemberSpaceStep asegura el espacio de trabajo del cliente. Corre aunque la
// suscripción se haya saltado: un espacio con suscripción nil es válido y se
// reconcilia en la siguiente invocación.
type MemberSpaceStep struct {
	now func() time.Time
}

// NewMemberSpaceStep construye el paso.
func NewMemberSpaceStep() *MemberSpaceStep {
	return &MemberSpaceStep{now: time.Now}
}

// Provision busca el espacio del cliente; si existe, actualiza el enlace a la
// suscripción (si ahora existe) y el set de módulos activos; si no, lo crea.
// El set de módulos es la unión de los del plan con el baseline siempre activo.
func (s *MemberSpaceStep) Provision(ctx context.Context, r StepRepos, refs ResolvedRefs, subscriptionID *string) (*entity.MemberSpace, string, error) {
	modules := entity.BaselineModules()
	if refs.PlanID != nil {
		plan, err := r.Plans.GetByID(ctx, *refs.PlanID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: leer plan para módulos: %v", domain.ErrTransientStore, err)
		}
		if plan != nil {
			modules = unionModules(plan.Modules, modules)
		}
	}

	existing, err := r.Spaces.GetByClient(ctx, *refs.ClientID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: leer espacio existente: %v", domain.ErrTransientStore, err)
	}
	if existing != nil {
		if existing.SubscriptionID == nil && subscriptionID != nil {
			existing.SubscriptionID = subscriptionID
		}
		if existing.PrincipalID == nil && refs.PrincipalID != nil {
			existing.PrincipalID = refs.PrincipalID
		}
		existing.ActiveModules = unionModules(existing.ActiveModules, modules)
		existing.IsActive = true
		existing.UpdatedAt = s.now()
		if err := r.Spaces.Update(ctx, existing); err != nil {
			return nil, "", fmt.Errorf("%w: actualizar espacio: %v", domain.ErrTransientStore, err)
		}
		return existing, StepReused, nil
	}

	now := s.now()
	space := &entity.MemberSpace{
		ID:             uuid.New().String(),
		PrincipalID:    refs.PrincipalID,
		ClientID:       *refs.ClientID,
		SubscriptionID: subscriptionID,
		ActiveModules:  modules,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := r.Spaces.Create(ctx, space); err != nil {
		if errors.Is(err, domain.ErrDuplicateConflict) {
			winner, gerr := r.Spaces.GetByClient(ctx, *refs.ClientID)
			if gerr != nil || winner == nil {
				return nil, "", fmt.Errorf("%w: releer espacio: %v", domain.ErrTransientStore, gerr)
			}
			return winner, StepReused, nil
		}
		return nil, "", fmt.Errorf("%w: insertar espacio: %v", domain.ErrTransientStore, err)
	}
	return space, StepCreated, nil
}

// unionModules une dos listas preservando el orden de la primera y sin duplicados.
func unionModules(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, m := range list {
			if m == "" {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
