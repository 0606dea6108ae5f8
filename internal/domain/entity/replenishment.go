package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Tipos de solicitud de reposición.
type ReplenishmentType string

const (
	ReplenishmentAutomatic  ReplenishmentType = "AUTOMATIC"
	ReplenishmentManual     ReplenishmentType = "MANUAL"
	ReplenishmentPreventive ReplenishmentType = "PREVENTIVE"
	ReplenishmentEmergency  ReplenishmentType = "EMERGENCY"
)

// Prioridades de reposición.
type ReplenishmentPriority string

const (
	PriorityLow    ReplenishmentPriority = "LOW"
	PriorityNormal ReplenishmentPriority = "NORMAL"
	PriorityHigh   ReplenishmentPriority = "HIGH"
	PriorityUrgent ReplenishmentPriority = "URGENT"
)

// Estados del ciclo de vida de una reposición.
// suggested → approved → requested → inTransit ⇄ partiallyReceived → received;
// cualquier estado no terminal → cancelled.
type ReplenishmentStatus string

const (
	ReplenishmentSuggested         ReplenishmentStatus = "SUGGESTED"
	ReplenishmentApproved          ReplenishmentStatus = "APPROVED"
	ReplenishmentRequested         ReplenishmentStatus = "REQUESTED"
	ReplenishmentInTransit         ReplenishmentStatus = "IN_TRANSIT"
	ReplenishmentPartiallyReceived ReplenishmentStatus = "PARTIALLY_RECEIVED"
	ReplenishmentReceived          ReplenishmentStatus = "RECEIVED"
	ReplenishmentCancelled         ReplenishmentStatus = "CANCELLED"
)

// IsTerminal indica si el estado es final (recibido o cancelado).
func (s ReplenishmentStatus) IsTerminal() bool {
	return s == ReplenishmentReceived || s == ReplenishmentCancelled
}

// IsOpen indica si la solicitud sigue viva: a lo sumo una solicitud abierta
// por StockRecord a la vez.
func (s ReplenishmentStatus) IsOpen() bool {
	return !s.IsTerminal()
}

// ReplenishmentRequest entidad de workflow que acompaña el reabastecimiento
// de un StockRecord desde la sugerencia hasta la recepción total.
type ReplenishmentRequest struct {
	ID                   string
	StockRecordID        string
	ItemID               string
	LocationID           string
	Type                 ReplenishmentType
	Status               ReplenishmentStatus
	Priority             ReplenishmentPriority
	QuantitySuggested    decimal.Decimal
	QuantityRequested    decimal.Decimal
	QuantityFulfilled    decimal.Decimal
	SupplierID           string
	ApprovedBy           string
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	CancelReason         string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Approve transición suggested → approved; fija la cantidad solicitada
// (override opcional, si no se usa la sugerida).
func (r *ReplenishmentRequest) Approve(approverID string, quantityOverride *decimal.Decimal, now time.Time) error {
	if r.Status != ReplenishmentSuggested {
		return domain.ErrInvalidStateTransition
	}
	qty := r.QuantitySuggested
	if quantityOverride != nil {
		if quantityOverride.LessThanOrEqual(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		qty = Quantize(*quantityOverride)
	}
	r.Status = ReplenishmentApproved
	r.ApprovedBy = approverID
	r.QuantityRequested = qty
	r.UpdatedAt = now
	return nil
}

// Request transición approved (o suggested directo) → requested; fija proveedor
// y fecha esperada de entrega.
func (r *ReplenishmentRequest) Request(supplierID string, expectedDate time.Time, now time.Time) error {
	if r.Status != ReplenishmentApproved && r.Status != ReplenishmentSuggested {
		return domain.ErrInvalidStateTransition
	}
	if r.QuantityRequested.IsZero() {
		r.QuantityRequested = r.QuantitySuggested
	}
	r.Status = ReplenishmentRequested
	r.SupplierID = supplierID
	r.ExpectedDeliveryDate = &expectedDate
	r.UpdatedAt = now
	return nil
}

// MarkInTransit transición requested → inTransit.
func (r *ReplenishmentRequest) MarkInTransit(now time.Time) error {
	if r.Status != ReplenishmentRequested {
		return domain.ErrInvalidStateTransition
	}
	r.Status = ReplenishmentInTransit
	r.UpdatedAt = now
	return nil
}

// ReceivePartial acumula cantidad recibida desde inTransit o partiallyReceived.
// Si lo recibido cubre lo solicitado pasa a received y fija la fecha real de entrega;
// si no, queda en partiallyReceived.
func (r *ReplenishmentRequest) ReceivePartial(quantity decimal.Decimal, now time.Time) error {
	if r.Status != ReplenishmentInTransit && r.Status != ReplenishmentPartiallyReceived {
		return domain.ErrInvalidStateTransition
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	r.QuantityFulfilled = r.QuantityFulfilled.Add(Quantize(quantity))
	if r.QuantityFulfilled.GreaterThanOrEqual(r.QuantityRequested) {
		r.Status = ReplenishmentReceived
		r.ActualDeliveryDate = &now
	} else {
		r.Status = ReplenishmentPartiallyReceived
	}
	r.UpdatedAt = now
	return nil
}

// Cancel transición a cancelled desde cualquier estado no terminal.
func (r *ReplenishmentRequest) Cancel(reason string, now time.Time) error {
	if r.Status.IsTerminal() {
		return domain.ErrInvalidStateTransition
	}
	r.Status = ReplenishmentCancelled
	r.CancelReason = reason
	r.UpdatedAt = now
	return nil
}

// IsOverdue flag derivado (no es una transición almacenada): la entrega esperada
// ya pasó mientras la solicitud sigue en requested o inTransit.
func (r *ReplenishmentRequest) IsOverdue(now time.Time) bool {
	if r.Status != ReplenishmentRequested && r.Status != ReplenishmentInTransit {
		return false
	}
	return r.ExpectedDeliveryDate != nil && r.ExpectedDeliveryDate.Before(now)
}
