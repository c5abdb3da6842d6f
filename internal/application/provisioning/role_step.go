package provisioning

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
	"github.com/jhoicas/Suscripciones-api/internal/domain/repository"
)

// errPlanWithoutElevation: salto benigno, el plan no designa regla de elevación.
var errPlanWithoutElevation = errors.New("el plan no otorga rol elevado")

// RoleStep promueve al principal resuelto a enterprise_admin cuando el plan lo
// designa. Corre al final e independiente del éxito de suscripción y espacio.
type RoleStep struct{}

// NewRoleStep construye el paso.
func NewRoleStep() *RoleStep {
	return &RoleStep{}
}

// Elevate resuelve el principal objetivo probando en orden: principal_id del
// resolver, email del cliente contra el directorio, dueño de la empresa. El
// primer match inequívoco se eleva; empates o cero matches se reportan como
// deficiencia, nunca se adivina. La escritura toca el único lugar de registro
// del rol (principals.role); cualquier caché externo se refresca aparte.
func (s *RoleStep) Elevate(ctx context.Context, r StepRepos, refs ResolvedRefs) (*entity.Principal, string, error) {
	plan, err := r.Plans.GetByID(ctx, *refs.PlanID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: leer plan para elevación: %v", domain.ErrTransientStore, err)
	}
	if plan == nil {
		return nil, "", fmt.Errorf("%w: plan %s inexistente", domain.ErrMissingReference, *refs.PlanID)
	}
	if !plan.GrantsEnterpriseAdmin {
		return nil, "", errPlanWithoutElevation
	}

	target, err := resolveElevationTarget(ctx, r.Principals, r.Clients, r.Enterprises, refs)
	if err != nil {
		return nil, "", err
	}
	if target.IsElevated() {
		// Ya elevado (o platform_operator, que nunca se toca).
		return target, StepReused, nil
	}
	if err := r.Principals.UpdateRole(ctx, target.ID, entity.RoleEnterpriseAdmin); err != nil {
		return nil, "", fmt.Errorf("%w: actualizar rol: %v", domain.ErrTransientStore, err)
	}
	target.Role = entity.RoleEnterpriseAdmin
	return target, StepCreated, nil
}

// resolveElevationTarget aplica las tres estrategias de match de identidad en
// orden y retorna el primer candidato inequívoco. Lo comparten el elevador y
// el reporte de diagnóstico (que lo usa en modo solo lectura).
func resolveElevationTarget(
	ctx context.Context,
	principals repository.PrincipalRepository,
	clients repository.ClientRepository,
	enterprises repository.EnterpriseRepository,
	refs ResolvedRefs,
) (*entity.Principal, error) {
	// 1) principal_id ya resuelto.
	if refs.PrincipalID != nil {
		p, err := principals.GetByID(ctx, *refs.PrincipalID)
		if err != nil {
			return nil, fmt.Errorf("%w: leer principal resuelto: %v", domain.ErrTransientStore, err)
		}
		if p != nil {
			return p, nil
		}
	}

	// 2) email del cliente contra el directorio de cuentas.
	if refs.ClientID != nil {
		client, err := clients.GetByID(ctx, *refs.ClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: leer cliente para elevación: %v", domain.ErrTransientStore, err)
		}
		if client != nil && client.Email != "" {
			matches, err := principals.ListByEmail(ctx, client.Email)
			if err != nil {
				return nil, fmt.Errorf("%w: principales por email: %v", domain.ErrTransientStore, err)
			}
			if len(matches) == 1 {
				return matches[0], nil
			}
			if len(matches) > 1 {
				return nil, fmt.Errorf("%w: %d principales con email %s", domain.ErrAmbiguousElevationTarget, len(matches), client.Email)
			}
		}
	}

	// 3) dueño de la empresa.
	if refs.EnterpriseID != nil {
		ent, err := enterprises.GetByID(ctx, *refs.EnterpriseID)
		if err != nil {
			return nil, fmt.Errorf("%w: leer empresa para elevación: %v", domain.ErrTransientStore, err)
		}
		if ent != nil && ent.OwnerPrincipalID != nil {
			p, err := principals.GetByID(ctx, *ent.OwnerPrincipalID)
			if err != nil {
				return nil, fmt.Errorf("%w: leer dueño de empresa: %v", domain.ErrTransientStore, err)
			}
			if p != nil {
				return p, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: ningún principal candidato para elevación", domain.ErrMissingReference)
}
