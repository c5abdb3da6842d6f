package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// Fuentes de resolución, en orden de confianza decreciente.
const (
	SourcePayment        = "payment"         // columna FK directa del pago
	SourceNotes          = "notes"           // pista en payment.notes (JSON o texto)
	SourceClient         = "client"          // join: empresa del cliente / cliente único de la empresa
	SourceEmail          = "email"           // principal por email del cliente
	SourceSiblingPayment = "sibling_payment" // otro pago de la misma empresa con el dato
	SourceOwner          = "owner"           // principal dueño de la empresa
)

// ResolvedRefs tupla de referencias reconstruidas para el saga. Cada campo es
// independientemente anulable; Provenance indica qué fuente satisfizo cada uno.
type ResolvedRefs struct {
	EnterpriseID *string           `json:"enterprise_id,omitempty"`
	ClientID     *string           `json:"client_id,omitempty"`
	PlanID       *string           `json:"plan_id,omitempty"`
	PrincipalID  *string           `json:"principal_id,omitempty"`
	Provenance   map[string]string `json:"provenance,omitempty"`
}

func (r *ResolvedRefs) set(field, value, source string) {
	if value == "" {
		return
	}
	v := value
	switch field {
	case "enterprise_id":
		r.EnterpriseID = &v
	case "client_id":
		r.ClientID = &v
	case "plan_id":
		r.PlanID = &v
	case "principal_id":
		r.PrincipalID = &v
	}
	if r.Provenance == nil {
		r.Provenance = map[string]string{}
	}
	r.Provenance[field] = source
}

// Resolver reconstruye las FKs que el saga necesita probando fuentes en orden
// fijo de confianza: columna directa del pago, pistas en notes, inferencia por
// joins. Un campo irresoluble queda nil y se reporta como deficiencia; nunca
// es fatal por sí mismo.
type Resolver struct {
	repos ReadRepos
}

// NewResolver construye el resolver sobre repos de solo lectura.
func NewResolver(repos ReadRepos) *Resolver {
	return &Resolver{repos: repos}
}

// Resolve reconstruye {enterprise_id, client_id, plan_id, principal_id} para
// el pago. Retorna error solo ante fallos de infraestructura (reintentables).
func (r *Resolver) Resolve(ctx context.Context, payment *entity.Payment) (ResolvedRefs, []Deficiency, error) {
	refs := ResolvedRefs{}
	hints := parseNotesHints(payment.Notes)

	// client_id: columna directa > notes. El join por empresa necesita la
	// empresa, así que se reintenta más abajo.
	if payment.ClientID != nil && *payment.ClientID != "" {
		refs.set("client_id", *payment.ClientID, SourcePayment)
	} else if v := hints["client_id"]; v != "" {
		refs.set("client_id", v, SourceNotes)
	}

	// enterprise_id: columna directa > notes > empresa del cliente.
	if payment.EnterpriseID != nil && *payment.EnterpriseID != "" {
		refs.set("enterprise_id", *payment.EnterpriseID, SourcePayment)
	} else if v := hints["enterprise_id"]; v != "" {
		refs.set("enterprise_id", v, SourceNotes)
	} else if refs.ClientID != nil {
		client, err := r.repos.Clients.GetByID(ctx, *refs.ClientID)
		if err != nil {
			return refs, nil, fmt.Errorf("%w: resolver empresa vía cliente: %v", domain.ErrTransientStore, err)
		}
		if client != nil && client.EnterpriseID != "" {
			refs.set("enterprise_id", client.EnterpriseID, SourceClient)
		}
	}

	// client_id por join inverso: si la empresa tiene exactamente un cliente,
	// el match es inequívoco. Con cero o varios no se adivina.
	if refs.ClientID == nil && refs.EnterpriseID != nil {
		clients, err := r.repos.Clients.ListByEnterprise(ctx, *refs.EnterpriseID)
		if err != nil {
			return refs, nil, fmt.Errorf("%w: resolver cliente vía empresa: %v", domain.ErrTransientStore, err)
		}
		if len(clients) == 1 {
			refs.set("client_id", clients[0].ID, SourceClient)
		}
	}

	// plan_id: notes > pago hermano de la misma empresa que sí lo traiga.
	if v := hints["plan_id"]; v != "" {
		refs.set("plan_id", v, SourceNotes)
	} else if refs.EnterpriseID != nil {
		planID, err := r.planFromSiblings(ctx, payment.ID, *refs.EnterpriseID)
		if err != nil {
			return refs, nil, err
		}
		if planID != "" {
			refs.set("plan_id", planID, SourceSiblingPayment)
		}
	}

	// principal_id: notes > email del cliente contra el directorio > dueño de
	// la empresa. Un email con varios matches es ambiguo y no se usa.
	if v := hints["principal_id"]; v != "" {
		refs.set("principal_id", v, SourceNotes)
	} else {
		if refs.ClientID != nil {
			client, err := r.repos.Clients.GetByID(ctx, *refs.ClientID)
			if err != nil {
				return refs, nil, fmt.Errorf("%w: cliente para match de principal: %v", domain.ErrTransientStore, err)
			}
			if client != nil && client.Email != "" {
				principals, err := r.repos.Principals.ListByEmail(ctx, client.Email)
				if err != nil {
					return refs, nil, fmt.Errorf("%w: principales por email: %v", domain.ErrTransientStore, err)
				}
				if len(principals) == 1 {
					refs.set("principal_id", principals[0].ID, SourceEmail)
				}
			}
		}
		if refs.PrincipalID == nil && refs.EnterpriseID != nil {
			ent, err := r.repos.Enterprises.GetByID(ctx, *refs.EnterpriseID)
			if err != nil {
				return refs, nil, fmt.Errorf("%w: empresa para dueño: %v", domain.ErrTransientStore, err)
			}
			if ent != nil && ent.OwnerPrincipalID != nil && *ent.OwnerPrincipalID != "" {
				refs.set("principal_id", *ent.OwnerPrincipalID, SourceOwner)
			}
		}
	}

	var defs []Deficiency
	if refs.EnterpriseID == nil {
		defs = append(defs, Deficiency{Field: "enterprise_id", Reason: "no resuelto por ninguna fuente"})
	}
	if refs.ClientID == nil {
		defs = append(defs, Deficiency{Field: "client_id", Reason: "no resuelto por ninguna fuente"})
	}
	if refs.PlanID == nil {
		defs = append(defs, Deficiency{Field: "plan_id", Reason: "no resuelto por ninguna fuente"})
	}
	if refs.PrincipalID == nil {
		defs = append(defs, Deficiency{Field: "principal_id", Reason: "no resuelto por ninguna fuente"})
	}
	return refs, defs, nil
}

// planFromSiblings busca el plan_id en otros pagos de la misma empresa
// (columna directa no existe para plan; solo pistas en notes de hermanos).
func (r *Resolver) planFromSiblings(ctx context.Context, paymentID, enterpriseID string) (string, error) {
	siblings, err := r.repos.Payments.ListByEnterprise(ctx, enterpriseID)
	if err != nil {
		return "", fmt.Errorf("%w: pagos hermanos: %v", domain.ErrTransientStore, err)
	}
	for _, sib := range siblings {
		if sib.ID == paymentID {
			continue
		}
		if v := parseNotesHints(sib.Notes)["plan_id"]; v != "" {
			return v, nil
		}
	}
	return "", nil
}

// Claves de pista reconocidas en payment.notes.
var hintKeys = []string{"plan_id", "enterprise_id", "client_id", "principal_id"}

// parseNotesHints extrae pistas de notes tolerando tres formas: objeto JSON,
// objeto JSON incrustado en texto, o pares sueltos clave=valor / clave: valor.
// Nunca retorna error: notes imparseable produce mapa vacío.
func parseNotesHints(notes string) map[string]string {
	hints := map[string]string{}
	s := strings.TrimSpace(notes)
	if s == "" {
		return hints
	}

	if parseJSONHints(s, hints) {
		return hints
	}
	// JSON incrustado: '{...}' en medio de texto libre.
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		if parseJSONHints(s[start:end+1], hints) {
			return hints
		}
	}
	// Última forma: tokens "clave=valor" o "clave: valor" separados por ; , o saltos.
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	}) {
		sep := strings.IndexAny(tok, "=:")
		if sep <= 0 {
			continue
		}
		key := strings.Trim(strings.TrimSpace(tok[:sep]), `"'`)
		val := strings.Trim(strings.TrimSpace(tok[sep+1:]), `"'`)
		for _, k := range hintKeys {
			if key == k && val != "" {
				hints[k] = val
			}
		}
	}
	return hints
}

// parseJSONHints intenta leer s como objeto JSON y copia las claves conocidas.
// Acepta valores string o numéricos (pagos antiguos guardaban IDs como número).
func parseJSONHints(s string, hints map[string]string) bool {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return false
	}
	for _, k := range hintKeys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				hints[k] = v
			}
		case float64:
			hints[k] = strconv.FormatInt(int64(v), 10)
		}
	}
	return true
}
