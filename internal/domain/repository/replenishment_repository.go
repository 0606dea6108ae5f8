package repository

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// ReplenishmentRepository define el puerto de persistencia de solicitudes de
// reposición. El invariante "a lo sumo una solicitud abierta por StockRecord"
// se apoya en GetOpenByRecord dentro de la misma transacción que la sugiere.
type ReplenishmentRepository interface {
	Create(request *entity.ReplenishmentRequest) error
	Update(request *entity.ReplenishmentRequest) error
	GetByID(id string) (*entity.ReplenishmentRequest, error)
	// GetOpenByRecord devuelve la solicitud abierta del registro, o nil si no hay.
	GetOpenByRecord(stockRecordID string) (*entity.ReplenishmentRequest, error)
	List(onlyOpen bool, limit, offset int) ([]*entity.ReplenishmentRequest, error)
}
