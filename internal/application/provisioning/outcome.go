package provisioning

// Estados del saga. Cualquier paso fallido o saltado deja PARTIAL mientras la
// factura haya quedado creada; la incapacidad total de resolver referencias
// (o un fallo de la factura misma) deja FAILED.
const (
	StateStarted    = "STARTED"
	StateResolved   = "RESOLVED"
	StateInvoiced   = "INVOICED"
	StateSubscribed = "SUBSCRIBED"
	StateSpaced     = "SPACED"
	StateElevated   = "ELEVATED"
	StateDone       = "DONE"
	StatePartial    = "PARTIAL"
	StateFailed     = "FAILED"
)

// Nombres de paso del saga, en orden de ejecución.
const (
	StepResolve     = "resolve"
	StepInvoice     = "invoice"
	StepSubscribe   = "subscription"
	StepMemberSpace = "member_space"
	StepElevateRole = "role_elevation"
)

// Estados posibles de un paso.
const (
	StepCreated = "created"
	StepReused  = "reused"
	StepSkipped = "skipped"
	StepFailed  = "failed"
)

// StepResult resultado de un paso individual del saga.
type StepResult struct {
	Step     string `json:"step"`
	Status   string `json:"status"`
	Reason   string `json:"reason,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
}

// Deficiency hueco nombrado y no fatal en los datos resueltos o en un paso
// saltado. Se expone al operador, nunca al cliente final.
type Deficiency struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Outcome resultado agregado de una invocación del saga. Es el JSON que
// reciben el dispatcher del trigger y la herramienta de operador.
type Outcome struct {
	PaymentID            string       `json:"payment_id"`
	State                string       `json:"state"`
	Steps                []StepResult `json:"steps"`
	Deficiencies         []Deficiency `json:"deficiencies"`
	EnterpriseMarkedPaid bool         `json:"enterprise_marked_paid"`
	Refs                 ResolvedRefs `json:"resolved_refs"`
}

func newOutcome(paymentID string) *Outcome {
	return &Outcome{
		PaymentID:    paymentID,
		State:        StateStarted,
		Steps:        []StepResult{},
		Deficiencies: []Deficiency{},
	}
}

func (o *Outcome) addStep(step, status, reason, entityID string) {
	o.Steps = append(o.Steps, StepResult{Step: step, Status: status, Reason: reason, EntityID: entityID})
}

func (o *Outcome) addDeficiency(field, reason string) {
	for _, d := range o.Deficiencies {
		if d.Field == field {
			return
		}
	}
	o.Deficiencies = append(o.Deficiencies, Deficiency{Field: field, Reason: reason})
}

func (o *Outcome) removeDeficiency(field string) {
	for i, d := range o.Deficiencies {
		if d.Field == field {
			o.Deficiencies = append(o.Deficiencies[:i], o.Deficiencies[i+1:]...)
			return
		}
	}
}

// stepStatus devuelve el estado registrado para un paso ("" si no corrió).
func (o *Outcome) stepStatus(step string) string {
	for _, s := range o.Steps {
		if s.Step == step {
			return s.Status
		}
	}
	return ""
}
