package provisioning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests del elevador de roles: solo cuando el plan lo designa, solo con un
// candidato inequívoco, y escribiendo en el único lugar de registro del rol.
// ──────────────────────────────────────────────────────────────────────────────

func planConAdmin(id string) *entity.Plan {
	p := planMensual(id)
	p.GrantsEnterpriseAdmin = true
	return p
}

func TestRoleStep_ElevaMiembroAPrincipalResuelto(t *testing.T) {
	f := newFixture()
	f.plans.items["plan-1"] = planConAdmin("plan-1")
	f.principals.items["pri-1"] = &entity.Principal{ID: "pri-1", Role: entity.RoleMember}

	refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1"), PrincipalID: strPtr("pri-1")}
	target, status, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
	require.NoError(t, err)
	assert.Equal(t, StepCreated, status)
	assert.Equal(t, entity.RoleEnterpriseAdmin, target.Role)
	assert.Equal(t, []string{"pri-1=" + entity.RoleEnterpriseAdmin}, f.principals.roleUpdates)
}

// Un principal ya elevado no se reescribe; platform_operator nunca se degrada.
func TestRoleStep_YaElevadoNoEscribe(t *testing.T) {
	for _, rol := range []string{entity.RoleEnterpriseAdmin, entity.RolePlatformOperator} {
		f := newFixture()
		f.plans.items["plan-1"] = planConAdmin("plan-1")
		f.principals.items["pri-1"] = &entity.Principal{ID: "pri-1", Role: rol}

		refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1"), PrincipalID: strPtr("pri-1")}
		target, status, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
		require.NoError(t, err)
		assert.Equal(t, StepReused, status)
		assert.Equal(t, rol, target.Role, "el rol existente no debe tocarse")
		assert.Empty(t, f.principals.roleUpdates, "no debe haber escritura para rol %s", rol)
	}
}

func TestRoleStep_PlanSinElevacion_SaltoBenigno(t *testing.T) {
	f := newFixture()
	f.plans.items["plan-1"] = planMensual("plan-1") // sin GrantsEnterpriseAdmin

	refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1")}
	_, _, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
	require.Error(t, err)
	assert.ErrorIs(t, err, errPlanWithoutElevation)
	assert.Empty(t, f.principals.roleUpdates)
}

// Candidato por email del cliente: dos matches son ambigüedad, no se adivina.
func TestRoleStep_EmailAmbiguo_NoEleva(t *testing.T) {
	f := newFixture()
	f.plans.items["plan-1"] = planConAdmin("plan-1")
	f.clients.items["cli-1"] = &entity.Client{ID: "cli-1", Email: "ana@acme.co"}
	f.principals.items["pri-1"] = &entity.Principal{ID: "pri-1", Email: "ana@acme.co", Role: entity.RoleMember}
	f.principals.items["pri-2"] = &entity.Principal{ID: "pri-2", Email: "ana@acme.co", Role: entity.RoleMember}

	refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1"), ClientID: strPtr("cli-1")}
	_, _, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAmbiguousElevationTarget)
	assert.Empty(t, f.principals.roleUpdates, "ante ambigüedad no debe escribirse ningún rol")
}

// Sin principal_id ni email con match, el dueño de la empresa es el candidato.
func TestRoleStep_CaeAlDuenoDeLaEmpresa(t *testing.T) {
	f := newFixture()
	f.plans.items["plan-1"] = planConAdmin("plan-1")
	f.enterprises.items["emp-1"] = &entity.Enterprise{ID: "emp-1", OwnerPrincipalID: strPtr("pri-9")}
	f.principals.items["pri-9"] = &entity.Principal{ID: "pri-9", Role: entity.RoleMember}

	refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1")}
	target, status, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
	require.NoError(t, err)
	assert.Equal(t, StepCreated, status)
	assert.Equal(t, "pri-9", target.ID)
	assert.Equal(t, entity.RoleEnterpriseAdmin, target.Role)
}

func TestRoleStep_SinCandidato_MissingReference(t *testing.T) {
	f := newFixture()
	f.plans.items["plan-1"] = planConAdmin("plan-1")
	f.enterprises.items["emp-1"] = &entity.Enterprise{ID: "emp-1"} // sin dueño

	refs := ResolvedRefs{PlanID: strPtr("plan-1"), EnterpriseID: strPtr("emp-1")}
	_, _, err := NewRoleStep().Elevate(context.Background(), f.stepRepos(), refs)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingReference)
}
