package repository

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// StockRecordRepository define el puerto para consultar/actualizar registros
// de stock por (artículo, ubicación). Usado dentro de transacciones para
// garantizar consistencia.
type StockRecordRepository interface {
	Get(itemID, locationID string) (*entity.StockRecord, error)
	GetByID(id string) (*entity.StockRecord, error)
	Upsert(record *entity.StockRecord) error
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE); la unidad
	// de exclusión mutua del libro es el StockRecord. Devuelve nil si no existe.
	GetForUpdate(itemID, locationID string) (*entity.StockRecord, error)
}
