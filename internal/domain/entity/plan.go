package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Módulos SaaS disponibles (deben coincidir con el CHECK de member_spaces.active_modules).
const (
	ModuleDashboard = "dashboard"
	ModuleSupport   = "support"
	ModuleBilling   = "billing"
	ModuleCRM       = "crm"
	ModuleAnalytics = "analytics"
	ModuleAPI       = "api"
)

// BaselineModules devuelve los módulos siempre activos de todo member space,
// independiente del plan contratado.
func BaselineModules() []string {
	return []string{ModuleDashboard, ModuleSupport}
}

// Plan representa un plan comercial con su lista ordenada de módulos.
// Entrada de solo lectura para el saga.
type Plan struct {
	ID                    string
	Name                  string
	Price                 decimal.Decimal // precio mensual TTC
	Modules               []string        // módulos incluidos, en orden
	GrantsEnterpriseAdmin bool            // el pagador del plan se vuelve admin de su empresa
	CreatedAt             time.Time
	UpdatedAt             time.Time
}
