package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// idealStockFactor para registros sin máximo definido: el stock ideal es
// ReorderPoint × 1.5 y se sugiere la diferencia contra lo que hay en mano.
var idealStockFactor = decimal.NewFromFloat(1.5)

// SuggestReplenishment construye la sugerencia automática de reposición para un
// registro bajo su punto de reorden. Devuelve nil si el registro no necesita
// reposición. El guard de "a lo sumo una solicitud abierta" es responsabilidad
// del caller, dentro de la misma transacción.
func SuggestReplenishment(rec *entity.StockRecord, now time.Time) *entity.ReplenishmentRequest {
	if !rec.NeedsReplenishment() {
		return nil
	}

	var target decimal.Decimal
	if rec.QuantityMaximum != nil {
		target = *rec.QuantityMaximum
	} else {
		target = rec.ReorderPoint.Mul(idealStockFactor)
	}
	suggested := entity.Quantize(target.Sub(rec.QuantityOnHand))
	if suggested.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	priority := entity.PriorityNormal
	switch {
	case rec.IsZero():
		priority = entity.PriorityUrgent
	case rec.IsLowStock():
		priority = entity.PriorityHigh
	}

	return &entity.ReplenishmentRequest{
		ID:                uuid.New().String(),
		StockRecordID:     rec.ID,
		ItemID:            rec.ItemID,
		LocationID:        rec.LocationID,
		Type:              entity.ReplenishmentAutomatic,
		Status:            entity.ReplenishmentSuggested,
		Priority:          priority,
		QuantitySuggested: suggested,
		QuantityFulfilled: decimal.Zero,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
