package ledger

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la mutación del registro, el
// asiento del movimiento y el refresco de estado derivado se confirmen como
// una sola unidad atómica, o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error) error
}

// Notifier puerto hacia el módulo externo de mensajería. Se invoca después del
// commit (nunca bajo el bloqueo del registro) para alertas de severidad alta o
// crítica; su fallo no revierte el estado de la alerta.
type Notifier interface {
	Notify(ctx context.Context, alert *entity.Alert) error
}
