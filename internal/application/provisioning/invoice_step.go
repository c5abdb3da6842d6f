package provisioning

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suscripciones-api/internal/domain"
	"github.com/jhoicas/Suscripciones-api/internal/domain/entity"
)

// InvoiceStep asegura exactamente una factura por pago.
type InvoiceStep struct {
	prefix      string
	maxAttempts int
	now         func() time.Time
}

// NewInvoiceStep construye el paso. prefix vacío usa "INV"; maxAttempts <= 0
// usa 5 intentos de asignación de número.
func NewInvoiceStep(prefix string, maxAttempts int) *InvoiceStep {
	if prefix == "" {
		prefix = "INV"
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &InvoiceStep{prefix: prefix, maxAttempts: maxAttempts, now: time.Now}
}

// invoiceResult resultado del paso de factura.
type invoiceResult struct {
	invoice          *entity.Invoice
	created          bool
	enterpriseMarked bool
}

// Provision chequea primero si el pago ya tiene factura (no-op idempotente:
// la defensa principal contra facturas duplicadas por reinvocación). Si no,
// asigna un número validado por unicidad ANTES del insert e inserta con los
// montos copiados del pago. Como efecto lateral marca la empresa como paid.
func (s *InvoiceStep) Provision(ctx context.Context, r StepRepos, payment *entity.Payment, refs ResolvedRefs) (invoiceResult, error) {
	res := invoiceResult{}

	existing, err := r.Invoices.GetByPaymentID(ctx, payment.ID)
	if err != nil {
		return res, fmt.Errorf("%w: factura existente: %v", domain.ErrTransientStore, err)
	}
	if existing != nil {
		res.invoice = existing
		marked, err := s.markEnterprisePaid(ctx, r, refs)
		if err != nil {
			return res, err
		}
		res.enterpriseMarked = marked
		return res, nil
	}

	number, err := s.allocateNumber(ctx, r)
	if err != nil {
		return res, err
	}

	// Montos copiados del pago; el TTC se recalcula si viene vacío.
	// Nunca se inserta con número o montos nulos: se computa y valida aquí,
	// no se confía en defaults del almacén.
	ht, tva, ttc := payment.AmountHT, payment.AmountTVA, payment.AmountTTC
	if ttc.IsZero() && !ht.IsZero() {
		ttc = ht.Add(tva)
	}
	if number == "" {
		return res, fmt.Errorf("%w: número de factura vacío", domain.ErrInvalidInput)
	}

	inv := &entity.Invoice{
		ID:        uuid.New().String(),
		PaymentID: payment.ID,
		Number:    number,
		AmountHT:  ht,
		AmountTVA: tva,
		AmountTTC: ttc,
		CreatedAt: s.now(),
	}
	if err := r.Invoices.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrDuplicateConflict) {
			// Una invocación concurrente ganó; su fila es autoritativa.
			winner, gerr := r.Invoices.GetByPaymentID(ctx, payment.ID)
			if gerr != nil {
				return res, fmt.Errorf("%w: releer factura: %v", domain.ErrTransientStore, gerr)
			}
			if winner != nil {
				res.invoice = winner
				marked, merr := s.markEnterprisePaid(ctx, r, refs)
				if merr != nil {
					return res, merr
				}
				res.enterpriseMarked = marked
				return res, nil
			}
			return res, err
		}
		return res, fmt.Errorf("%w: insertar factura: %v", domain.ErrTransientStore, err)
	}

	res.invoice = inv
	res.created = true
	marked, err := s.markEnterprisePaid(ctx, r, refs)
	if err != nil {
		return res, err
	}
	res.enterpriseMarked = marked
	return res, nil
}

// allocateNumber genera INV-YYYYMMDD-XXXXXXXX y verifica unicidad contra el
// almacén antes de usarlo, con reintento acotado ante colisión de sufijo.
func (s *InvoiceStep) allocateNumber(ctx context.Context, r StepRepos) (string, error) {
	date := s.now().Format("20060102")
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		suffix, err := randomSuffix()
		if err != nil {
			return "", fmt.Errorf("generar sufijo de factura: %w", err)
		}
		number := fmt.Sprintf("%s-%s-%s", s.prefix, date, suffix)
		n, err := r.Invoices.CountByNumber(ctx, number)
		if err != nil {
			return "", fmt.Errorf("%w: verificar número de factura: %v", domain.ErrTransientStore, err)
		}
		if n == 0 {
			return number, nil
		}
	}
	return "", fmt.Errorf("%w: sin número de factura libre tras %d intentos", domain.ErrDuplicateConflict, s.maxAttempts)
}

// randomSuffix devuelve 8 caracteres hex en mayúsculas (4 bytes crypto/rand).
func randomSuffix() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b[:])), nil
}

// markEnterprisePaid actualiza el resumen de pago de la empresa, una vez que
// la factura existe e independiente de los pasos posteriores.
func (s *InvoiceStep) markEnterprisePaid(ctx context.Context, r StepRepos, refs ResolvedRefs) (bool, error) {
	if refs.EnterpriseID == nil {
		return false, nil
	}
	if err := r.Enterprises.UpdatePaymentStatus(ctx, *refs.EnterpriseID, entity.EnterprisePaid); err != nil {
		return false, fmt.Errorf("%w: marcar empresa paid: %v", domain.ErrTransientStore, err)
	}
	return true, nil
}
