package dto

// ProvisionRequest cuerpo del webhook payment-paid: solo el identificador,
// el dispatcher puede disparar más de una vez para el mismo pago.
type ProvisionRequest struct {
	PaymentID string `json:"payment_id"`
}
