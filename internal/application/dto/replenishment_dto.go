package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SuggestRequest body para solicitar la evaluación de reposición de un registro.
type SuggestRequest struct {
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
}

// ApproveRequest body para aprobar una sugerencia.
type ApproveRequest struct {
	QuantityOverride *decimal.Decimal `json:"quantity_override,omitempty"`
}

// PlaceOrderRequest body para pasar la solicitud a estado requested.
type PlaceOrderRequest struct {
	SupplierID           string    `json:"supplier_id"`
	ExpectedDeliveryDate time.Time `json:"expected_delivery_date"`
}

// ReceiveRequest body para recepciones totales o parciales.
type ReceiveRequest struct {
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	SourceDocument string          `json:"source_document,omitempty"`
}

// ReplenishmentResponse solicitud de reposición en respuestas. Overdue es un
// flag derivado contra la hora de la consulta, no un estado almacenado.
type ReplenishmentResponse struct {
	ID                   string          `json:"id"`
	ItemID               string          `json:"item_id"`
	LocationID           string          `json:"location_id"`
	Type                 string          `json:"type"`
	Status               string          `json:"status"`
	Priority             string          `json:"priority"`
	QuantitySuggested    decimal.Decimal `json:"quantity_suggested"`
	QuantityRequested    decimal.Decimal `json:"quantity_requested"`
	QuantityFulfilled    decimal.Decimal `json:"quantity_fulfilled"`
	SupplierID           string          `json:"supplier_id,omitempty"`
	ApprovedBy           string          `json:"approved_by,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time      `json:"actual_delivery_date,omitempty"`
	Overdue              bool            `json:"overdue"`
	CreatedAt            time.Time       `json:"created_at"`
}

// NewReplenishmentResponse mapea la entidad al DTO, derivando Overdue contra now.
func NewReplenishmentResponse(r *entity.ReplenishmentRequest, now time.Time) ReplenishmentResponse {
	return ReplenishmentResponse{
		ID:                   r.ID,
		ItemID:               r.ItemID,
		LocationID:           r.LocationID,
		Type:                 string(r.Type),
		Status:               string(r.Status),
		Priority:             string(r.Priority),
		QuantitySuggested:    r.QuantitySuggested,
		QuantityRequested:    r.QuantityRequested,
		QuantityFulfilled:    r.QuantityFulfilled,
		SupplierID:           r.SupplierID,
		ApprovedBy:           r.ApprovedBy,
		ExpectedDeliveryDate: r.ExpectedDeliveryDate,
		ActualDeliveryDate:   r.ActualDeliveryDate,
		Overdue:              r.IsOverdue(now),
		CreatedAt:            r.CreatedAt,
	}
}
