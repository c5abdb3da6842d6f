package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suscripciones-api/internal/application/provisioning"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Orchestrator *provisioning.Orchestrator
	Diagnostic   *provisioning.Diagnostic
	JWTSecret    string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Webhook del trigger (público: lo llama el colaborador de checkout).
	// El cuerpo trae solo el payment_id; el saga es idempotente ante
	// disparos duplicados.
	provHandler := NewProvisioningHandler(deps.Orchestrator)
	api.Post("/webhooks/payment-paid", provHandler.Webhook)

	// Rutas de operador (requieren Bearer Token + rol)
	operators := api.Group("/", AuthMiddleware(deps.JWTSecret),
		RequireRole(entity.RolePlatformOperator, entity.RoleEnterpriseAdmin))

	// Reinvocación manual del saga (recuperación)
	operators.Post("/payments/:id/provision", provHandler.Provision)

	// Diagnóstico de solo lectura
	diagHandler := NewDiagnosticHandler(deps.Diagnostic)
	operators.Get("/payments/:id/diagnostic", diagHandler.ByPayment)
	operators.Get("/enterprises/:id/diagnostic", diagHandler.ByEnterprise)
}
