package repository

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del libro de movimientos
// (append-only: se crean y a lo sumo se marcan como cancelados, nunca se borran).
type MovementRepository interface {
	Create(movement *entity.MovementEntry) error
	GetByID(id string) (*entity.MovementEntry, error)
	// MarkCancelled transiciona el movimiento a CANCELLED con motivo y fecha.
	MarkCancelled(id, reason string, at time.Time) error
	ListByRecord(stockRecordID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
	ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error)
}
