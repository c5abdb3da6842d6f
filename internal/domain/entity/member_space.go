package entity

import "time"

// MemberSpace representa el espacio de trabajo del cliente.
// Invariantes: único por cliente; su creación no depende de que exista
// la suscripción (SubscriptionID puede quedar nil y reconciliarse después).
type MemberSpace struct {
	ID             string
	PrincipalID    *string // nil hasta resolver el principal
	ClientID       string
	SubscriptionID *string // nil si la suscripción aún no existe
	ActiveModules  []string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasModule informa si el módulo está activo en el espacio.
func (m *MemberSpace) HasModule(name string) bool {
	for _, mod := range m.ActiveModules {
		if mod == name {
			return true
		}
	}
	return false
}
