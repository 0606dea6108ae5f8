package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DefaultExpiryWindowDays ventana por defecto para la condición "por vencer".
const DefaultExpiryWindowDays = 30

// Engine deriva el conjunto de alertas abiertas de un StockRecord a partir de
// su estado actual. Es idempotente: evaluarlo dos veces sin mutación intermedia
// no abre alertas nuevas ni duplica resoluciones, y tras cualquier mutación el
// conjunto abierto coincide exactamente con los predicados verdaderos.
type Engine struct {
	ExpiryWindowDays int
}

// NewEngine construye el motor con la ventana de vencimiento indicada
// (0 = usar DefaultExpiryWindowDays).
func NewEngine(expiryWindowDays int) *Engine {
	if expiryWindowDays <= 0 {
		expiryWindowDays = DefaultExpiryWindowDays
	}
	return &Engine{ExpiryWindowDays: expiryWindowDays}
}

// Evaluation resultado de una evaluación: alertas a abrir y alertas abiertas a resolver.
type Evaluation struct {
	ToOpen    []*entity.Alert
	ToResolve []*entity.Alert
}

// condición evaluable con su severidad y mensaje.
type condition struct {
	kind     entity.AlertCondition
	severity entity.AlertSeverity
	holds    bool
	message  string
}

// Evaluate compara los predicados de condición contra las alertas abiertas.
// Por cada condición verdadera sin alerta abierta, propone abrir una; por cada
// alerta abierta cuya condición ya no se cumple, propone resolverla.
func (e *Engine) Evaluate(rec *entity.StockRecord, open []*entity.Alert, now time.Time) Evaluation {
	conds := e.conditions(rec, now)

	openByKind := make(map[entity.AlertCondition]*entity.Alert, len(open))
	for _, a := range open {
		openByKind[a.Condition] = a
	}

	var ev Evaluation
	for _, c := range conds {
		existing := openByKind[c.kind]
		switch {
		case c.holds && existing == nil:
			ev.ToOpen = append(ev.ToOpen, &entity.Alert{
				ID:            uuid.New().String(),
				StockRecordID: rec.ID,
				ItemID:        rec.ItemID,
				LocationID:    rec.LocationID,
				Condition:     c.kind,
				Severity:      c.severity,
				Message:       c.message,
				Status:        entity.AlertStatusOpen,
				CreatedAt:     now,
			})
		case !c.holds && existing != nil:
			ev.ToResolve = append(ev.ToResolve, existing)
		}
	}
	return ev
}

// conditions evalúa los cinco predicados en orden fijo. ZeroStock tiene
// precedencia sobre LowStock: con stock en cero solo se abre la alerta crítica.
func (e *Engine) conditions(rec *entity.StockRecord, now time.Time) []condition {
	zero := rec.IsZero()
	return []condition{
		{
			kind:     entity.AlertZeroStock,
			severity: entity.SeverityCritical,
			holds:    zero,
			message:  fmt.Sprintf("stock en cero para el artículo %s en %s", rec.ItemID, rec.LocationID),
		},
		{
			kind:     entity.AlertLowStock,
			severity: entity.SeverityHigh,
			holds:    !zero && rec.IsLowStock(),
			message: fmt.Sprintf("stock bajo: %s disponible, mínimo %s",
				rec.QuantityOnHand.String(), rec.QuantityMinimum.String()),
		},
		{
			kind:     entity.AlertExcessStock,
			severity: entity.SeverityMedium,
			holds:    rec.IsExcess(),
			message:  fmt.Sprintf("stock en exceso: %s en mano supera el máximo definido", rec.QuantityOnHand.String()),
		},
		{
			kind:     entity.AlertExpired,
			severity: entity.SeverityCritical,
			holds:    rec.IsExpired(now),
			message:  fmt.Sprintf("lote %s vencido", rec.LotNumber),
		},
		{
			kind:     entity.AlertExpiringSoon,
			severity: entity.SeverityMedium,
			holds:    rec.IsExpiringSoon(now, e.ExpiryWindowDays),
			message:  fmt.Sprintf("lote %s vence dentro de %d días", rec.LotNumber, e.ExpiryWindowDays),
		},
	}
}
