package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

const stockRecordColumns = `
	id, item_id, location_id, quantity_on_hand, quantity_reserved,
	quantity_minimum, quantity_maximum, reorder_point, lead_time_days,
	lot_number, expiration_date, average_unit_cost, total_value, status,
	created_at, updated_at`

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL
// (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

// Get obtiene el registro de stock de un artículo en una ubicación.
func (r *StockRecordRepo) Get(itemID, locationID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE item_id = $1 AND location_id = $2`
	return r.scanOne(r.q.QueryRow(context.Background(), query, itemID, locationID), "get stock record")
}

// GetByID obtiene el registro por id.
func (r *StockRecordRepo) GetByID(id string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE id = $1`
	return r.scanOne(r.q.QueryRow(context.Background(), query, id), "get stock record by id")
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
// Devuelve nil si el artículo nunca fue estocado en la ubicación.
func (r *StockRecordRepo) GetForUpdate(itemID, locationID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + `
		FROM stock_records WHERE item_id = $1 AND location_id = $2
		FOR UPDATE`
	return r.scanOne(r.q.QueryRow(context.Background(), query, itemID, locationID), "get stock record for update")
}

// Upsert inserta o actualiza el registro por (artículo, ubicación).
func (r *StockRecordRepo) Upsert(rec *entity.StockRecord) error {
	query := `
		INSERT INTO stock_records (` + stockRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (item_id, location_id) DO UPDATE SET
			quantity_on_hand = EXCLUDED.quantity_on_hand,
			quantity_reserved = EXCLUDED.quantity_reserved,
			quantity_minimum = EXCLUDED.quantity_minimum,
			quantity_maximum = EXCLUDED.quantity_maximum,
			reorder_point = EXCLUDED.reorder_point,
			lead_time_days = EXCLUDED.lead_time_days,
			lot_number = EXCLUDED.lot_number,
			expiration_date = EXCLUDED.expiration_date,
			average_unit_cost = EXCLUDED.average_unit_cost,
			total_value = EXCLUDED.total_value,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		rec.ID, rec.ItemID, rec.LocationID, rec.QuantityOnHand, rec.QuantityReserved,
		rec.QuantityMinimum, rec.QuantityMaximum, rec.ReorderPoint, rec.LeadTimeDays,
		rec.LotNumber, rec.ExpirationDate, rec.AverageUnitCost, rec.TotalValue, rec.Status,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock record: %w", err)
	}
	return nil
}

func (r *StockRecordRepo) scanOne(row pgx.Row, op string) (*entity.StockRecord, error) {
	var s entity.StockRecord
	err := row.Scan(
		&s.ID, &s.ItemID, &s.LocationID, &s.QuantityOnHand, &s.QuantityReserved,
		&s.QuantityMinimum, &s.QuantityMaximum, &s.ReorderPoint, &s.LeadTimeDays,
		&s.LotNumber, &s.ExpirationDate, &s.AverageUnitCost, &s.TotalValue, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}
