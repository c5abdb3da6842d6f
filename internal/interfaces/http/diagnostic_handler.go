package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suscripciones-api/internal/application/dto"
	"github.com/jhoicas/Suscripciones-api/internal/application/provisioning"
	"github.com/jhoicas/Suscripciones-api/internal/domain"
)

// DiagnosticHandler expone el snapshot de solo lectura del saga.
type DiagnosticHandler struct {
	diag *provisioning.Diagnostic
}

// NewDiagnosticHandler construye el handler.
func NewDiagnosticHandler(diag *provisioning.Diagnostic) *DiagnosticHandler {
	return &DiagnosticHandler{diag: diag}
}

// ByPayment devuelve el snapshot para un pago.
func (h *DiagnosticHandler) ByPayment(c *fiber.Ctx) error {
	snap, err := h.diag.ByPayment(c.UserContext(), c.Params("id"))
	return h.respond(c, snap, err)
}

// ByEnterprise devuelve el snapshot del pago pagado más reciente de la empresa.
func (h *DiagnosticHandler) ByEnterprise(c *fiber.Ctx) error {
	snap, err := h.diag.ByEnterprise(c.UserContext(), c.Params("id"))
	return h.respond(c, snap, err)
}

func (h *DiagnosticHandler) respond(c *fiber.Ctx, snap *provisioning.Snapshot, err error) error {
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrTransientStore):
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "RETRYABLE", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.Status(fiber.StatusOK).JSON(snap)
}
