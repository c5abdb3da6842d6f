package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suscripciones-api/internal/application/dto"
	"github.com/jhoicas/Suscripciones-api/internal/application/provisioning"
	"github.com/jhoicas/Suscripciones-api/internal/domain"
)

// ProvisioningHandler expone el saga por HTTP: webhook del trigger y
// reinvocación manual del operador. Ambos caminos devuelven el mismo Outcome.
type ProvisioningHandler struct {
	orchestrator *provisioning.Orchestrator
}

// NewProvisioningHandler construye el handler.
func NewProvisioningHandler(orchestrator *provisioning.Orchestrator) *ProvisioningHandler {
	return &ProvisioningHandler{orchestrator: orchestrator}
}

// Webhook recibe el evento payment-paid del colaborador de checkout.
// Contrato at-least-once: puede dispararse varias veces para el mismo pago;
// el saga es idempotente, así que se reinvoca sin chequeos extra.
func (h *ProvisioningHandler) Webhook(c *fiber.Ctx) error {
	var req dto.ProvisionRequest
	if err := c.BodyParser(&req); err != nil || req.PaymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "payment_id requerido"})
	}
	return h.run(c, req.PaymentID)
}

// Provision reinvocación manual del operador para un pago (recuperación).
func (h *ProvisioningHandler) Provision(c *fiber.Ctx) error {
	paymentID := c.Params("id")
	if paymentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_PARAM", Message: "id de pago requerido"})
	}
	return h.run(c, paymentID)
}

func (h *ProvisioningHandler) run(c *fiber.Ctx, paymentID string) error {
	outcome, err := h.orchestrator.Provision(c.UserContext(), paymentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrConflict):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
		case errors.Is(err, domain.ErrTransientStore):
			// Reintentable: el dispatcher debe volver a disparar el evento.
			if outcome != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(outcome)
			}
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RETRYABLE", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusOK).JSON(outcome)
}
