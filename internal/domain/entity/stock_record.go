package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un registro de stock. Un registro nunca se elimina físicamente:
// se bloquea (Blocked) o se marca en revisión (UnderReview).
type RecordStatus string

const (
	RecordStatusActive      RecordStatus = "ACTIVE"
	RecordStatusBlocked     RecordStatus = "BLOCKED"
	RecordStatusUnderReview RecordStatus = "UNDER_REVIEW"
)

// QuantityScale precisión fija de las cantidades (3 decimales).
const QuantityScale = 3

// Quantize redondea una cantidad a la precisión fija del libro (3 decimales).
// Todas las comparaciones son sobre decimales exactos, nunca float.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

// StockRecord representa el agregado (artículo, ubicación): cantidad física,
// reservas, umbrales de reposición y valoración a costo promedio ponderado.
// Solo las operaciones del libro de movimientos pueden mutar sus cantidades.
type StockRecord struct {
	ID               string
	ItemID           string
	LocationID       string
	QuantityOnHand   decimal.Decimal
	QuantityReserved decimal.Decimal
	QuantityMinimum  decimal.Decimal
	QuantityMaximum  *decimal.Decimal // opcional; nil = sin máximo definido
	ReorderPoint     decimal.Decimal
	LeadTimeDays     int
	LotNumber        string
	ExpirationDate   *time.Time // opcional
	AverageUnitCost  decimal.Decimal
	TotalValue       decimal.Decimal // derivado: OnHand × AverageUnitCost
	Status           RecordStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewStockRecord crea el registro de un artículo recién estocado en una ubicación.
func NewStockRecord(id, itemID, locationID string, now time.Time) *StockRecord {
	return &StockRecord{
		ID:               id,
		ItemID:           itemID,
		LocationID:       locationID,
		QuantityOnHand:   decimal.Zero,
		QuantityReserved: decimal.Zero,
		QuantityMinimum:  decimal.Zero,
		ReorderPoint:     decimal.Zero,
		AverageUnitCost:  decimal.Zero,
		TotalValue:       decimal.Zero,
		Status:           RecordStatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// LockKey clave de ordenación para adquirir bloqueos multi-registro en orden
// global fijo (evita deadlocks entre traslados concurrentes en sentidos opuestos).
func (s *StockRecord) LockKey() string {
	return s.ItemID + "/" + s.LocationID
}

// AvailableQuantity cantidad disponible = en mano − reservada.
func (s *StockRecord) AvailableQuantity() decimal.Decimal {
	return s.QuantityOnHand.Sub(s.QuantityReserved)
}

// RecomputeTotalValue recalcula el valor total desde cantidad y costo promedio.
// Debe invocarse en cada mutación; TotalValue nunca se asigna de forma independiente.
func (s *StockRecord) RecomputeTotalValue() {
	s.TotalValue = s.QuantityOnHand.Mul(s.AverageUnitCost).Round(QuantityScale)
}

// IsZero indica stock en cero.
func (s *StockRecord) IsZero() bool {
	return s.QuantityOnHand.LessThanOrEqual(decimal.Zero)
}

// IsLowStock indica stock en o por debajo del mínimo.
func (s *StockRecord) IsLowStock() bool {
	return s.QuantityOnHand.LessThanOrEqual(s.QuantityMinimum)
}

// IsExcess indica stock por encima del máximo (si hay máximo definido).
func (s *StockRecord) IsExcess() bool {
	return s.QuantityMaximum != nil && s.QuantityOnHand.GreaterThan(*s.QuantityMaximum)
}

// NeedsReplenishment indica stock en o por debajo del punto de reorden.
func (s *StockRecord) NeedsReplenishment() bool {
	return s.QuantityOnHand.LessThanOrEqual(s.ReorderPoint)
}

// IsExpired indica lote vencido a la fecha dada.
func (s *StockRecord) IsExpired(now time.Time) bool {
	return s.ExpirationDate != nil && s.ExpirationDate.Before(now)
}

// IsExpiringSoon indica lote que vence dentro de la ventana indicada (y aún no vencido).
func (s *StockRecord) IsExpiringSoon(now time.Time, withinDays int) bool {
	if s.ExpirationDate == nil || s.IsExpired(now) {
		return false
	}
	limit := now.AddDate(0, 0, withinDays)
	return !s.ExpirationDate.After(limit)
}
