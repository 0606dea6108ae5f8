package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// AlertRepository define el puerto de persistencia de alertas de condición.
// Las alertas se resuelven (no se eliminan); el invariante "a lo sumo una
// alerta abierta por (registro, condición)" lo mantiene el motor de alertas.
type AlertRepository interface {
	Create(alert *entity.Alert) error
	ListOpenByRecord(stockRecordID string) ([]*entity.Alert, error)
	Resolve(id, reason string, at time.Time) error
}
