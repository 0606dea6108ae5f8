package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
)

// MovementRequest body para entradas, salidas, pérdidas y devoluciones.
// UnitCost es obligatorio en entradas y devoluciones.
type MovementRequest struct {
	ItemID         string           `json:"item_id"`
	LocationID     string           `json:"location_id"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
	SourceDocument string           `json:"source_document,omitempty"`
}

// TransferRequest body para traslados entre ubicaciones.
type TransferRequest struct {
	ItemID         string          `json:"item_id"`
	FromLocationID string          `json:"from_location_id"`
	ToLocationID   string          `json:"to_location_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	SourceDocument string          `json:"source_document,omitempty"`
}

// AdjustmentRequest body para ajustes por conteo físico (delta con signo).
type AdjustmentRequest struct {
	ItemID     string          `json:"item_id"`
	LocationID string          `json:"location_id"`
	Delta      decimal.Decimal `json:"delta"`
	Reason     string          `json:"reason"`
}

// ReservationRequest body para reservas y liberaciones.
type ReservationRequest struct {
	ItemID      string          `json:"item_id"`
	LocationID  string          `json:"location_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	DocumentRef string          `json:"document_ref,omitempty"`
}

// CancelRequest body para cancelar un movimiento.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// MovementResponse asiento del libro en respuestas.
type MovementResponse struct {
	ID             string          `json:"id"`
	TransactionID  string          `json:"transaction_id"`
	ItemID         string          `json:"item_id"`
	LocationID     string          `json:"location_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	BalanceBefore  decimal.Decimal `json:"balance_before"`
	BalanceAfter   decimal.Decimal `json:"balance_after"`
	SourceDocument string          `json:"source_document,omitempty"`
	OriginLocation string          `json:"origin_location,omitempty"`
	DestinationLoc string          `json:"destination_location,omitempty"`
	Actor          string          `json:"actor,omitempty"`
	Status         string          `json:"status"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewMovementResponse mapea la entidad al DTO.
func NewMovementResponse(m *entity.MovementEntry) MovementResponse {
	return MovementResponse{
		ID:             m.ID,
		TransactionID:  m.TransactionID,
		ItemID:         m.ItemID,
		LocationID:     m.LocationID,
		Type:           string(m.Type),
		Quantity:       m.Quantity,
		UnitCost:       m.UnitCost,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		SourceDocument: m.SourceDocument,
		OriginLocation: m.OriginLocation,
		DestinationLoc: m.DestinationLoc,
		Actor:          m.Actor,
		Status:         string(m.Status),
		OccurredAt:     m.OccurredAt,
	}
}

// MutationResponse efectos de una mutación del libro: registro resultante,
// asientos generados y alertas abiertas/resueltas en la misma transacción.
type MutationResponse struct {
	Record                 StockRecordResponse  `json:"record"`
	Movements              []MovementResponse   `json:"movements"`
	AlertsOpened           []AlertResponse      `json:"alerts_opened,omitempty"`
	AlertsResolved         []AlertResponse      `json:"alerts_resolved,omitempty"`
	ReplenishmentSuggested *ReplenishmentResponse `json:"replenishment_suggested,omitempty"`
}

// NewMutationResponse mapea el resultado de la mutación al DTO.
func NewMutationResponse(res *ledger.MutationResult) MutationResponse {
	out := MutationResponse{Record: NewStockRecordResponse(res.Record)}
	for _, m := range res.Movements {
		out.Movements = append(out.Movements, NewMovementResponse(m))
	}
	for _, a := range res.AlertsOpened {
		out.AlertsOpened = append(out.AlertsOpened, NewAlertResponse(a))
	}
	for _, a := range res.AlertsResolved {
		out.AlertsResolved = append(out.AlertsResolved, NewAlertResponse(a))
	}
	if res.ReplenishmentSuggested != nil {
		r := NewReplenishmentResponse(res.ReplenishmentSuggested, time.Now())
		out.ReplenishmentSuggested = &r
	}
	return out
}
