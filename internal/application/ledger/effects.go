package ledger

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// MutationResult lista explícita de efectos de una mutación del libro.
// El caso de uso (o una capa fina de orquestación) despacha los efectos que
// correspondan; el núcleo del libro no depende de mensajería ni notificaciones.
type MutationResult struct {
	Record                 *entity.StockRecord
	Movements              []*entity.MovementEntry
	AlertsOpened           []*entity.Alert
	AlertsResolved         []*entity.Alert
	ReplenishmentSuggested *entity.ReplenishmentRequest
}

// Movement devuelve el movimiento principal de la mutación (el primero).
func (r *MutationResult) Movement() *entity.MovementEntry {
	if len(r.Movements) == 0 {
		return nil
	}
	return r.Movements[0]
}
