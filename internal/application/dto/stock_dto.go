package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRecordResponse estado de un registro de stock con sus consultas derivadas.
type StockRecordResponse struct {
	ID                 string           `json:"id"`
	ItemID             string           `json:"item_id"`
	LocationID         string           `json:"location_id"`
	QuantityOnHand     decimal.Decimal  `json:"quantity_on_hand"`
	QuantityReserved   decimal.Decimal  `json:"quantity_reserved"`
	AvailableQuantity  decimal.Decimal  `json:"available_quantity"`
	QuantityMinimum    decimal.Decimal  `json:"quantity_minimum"`
	QuantityMaximum    *decimal.Decimal `json:"quantity_maximum,omitempty"`
	ReorderPoint       decimal.Decimal  `json:"reorder_point"`
	LeadTimeDays       int              `json:"lead_time_days"`
	LotNumber          string           `json:"lot_number,omitempty"`
	ExpirationDate     *time.Time       `json:"expiration_date,omitempty"`
	AverageUnitCost    decimal.Decimal  `json:"average_unit_cost"`
	TotalValue         decimal.Decimal  `json:"total_value"`
	Status             string           `json:"status"`
	NeedsReplenishment bool             `json:"needs_replenishment"`
	LowStock           bool             `json:"low_stock"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// NewStockRecordResponse mapea la entidad al DTO.
func NewStockRecordResponse(rec *entity.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:                 rec.ID,
		ItemID:             rec.ItemID,
		LocationID:         rec.LocationID,
		QuantityOnHand:     rec.QuantityOnHand,
		QuantityReserved:   rec.QuantityReserved,
		AvailableQuantity:  rec.AvailableQuantity(),
		QuantityMinimum:    rec.QuantityMinimum,
		QuantityMaximum:    rec.QuantityMaximum,
		ReorderPoint:       rec.ReorderPoint,
		LeadTimeDays:       rec.LeadTimeDays,
		LotNumber:          rec.LotNumber,
		ExpirationDate:     rec.ExpirationDate,
		AverageUnitCost:    rec.AverageUnitCost,
		TotalValue:         rec.TotalValue,
		Status:             string(rec.Status),
		NeedsReplenishment: rec.NeedsReplenishment(),
		LowStock:           rec.IsLowStock(),
		UpdatedAt:          rec.UpdatedAt,
	}
}

// ThresholdsRequest body para actualizar umbrales y datos de lote.
type ThresholdsRequest struct {
	Minimum        decimal.Decimal  `json:"minimum"`
	Maximum        *decimal.Decimal `json:"maximum,omitempty"`
	ReorderPoint   decimal.Decimal  `json:"reorder_point"`
	LeadTimeDays   int              `json:"lead_time_days"`
	LotNumber      string           `json:"lot_number,omitempty"`
	ExpirationDate *time.Time       `json:"expiration_date,omitempty"`
}

// StatusRequest body para cambiar el estado del registro.
type StatusRequest struct {
	Status string `json:"status"` // ACTIVE | BLOCKED | UNDER_REVIEW
}

// AlertResponse alerta de condición en respuestas.
type AlertResponse struct {
	ID         string     `json:"id"`
	ItemID     string     `json:"item_id"`
	LocationID string     `json:"location_id"`
	Condition  string     `json:"condition"`
	Severity   string     `json:"severity"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewAlertResponse mapea la entidad al DTO.
func NewAlertResponse(a *entity.Alert) AlertResponse {
	return AlertResponse{
		ID:         a.ID,
		ItemID:     a.ItemID,
		LocationID: a.LocationID,
		Condition:  string(a.Condition),
		Severity:   string(a.Severity),
		Message:    a.Message,
		Status:     string(a.Status),
		ResolvedAt: a.ResolvedAt,
		CreatedAt:  a.CreatedAt,
	}
}
