package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ReplenishmentRepository = (*ReplenishmentRepo)(nil)

const replenishmentColumns = `
	id, stock_record_id, item_id, location_id, type, status, priority,
	quantity_suggested, quantity_requested, quantity_fulfilled, supplier_id,
	approved_by, expected_delivery_date, actual_delivery_date, cancel_reason,
	created_at, updated_at`

// estados abiertos para filtros SQL; espejo de ReplenishmentStatus.IsOpen.
var openStatuses = []entity.ReplenishmentStatus{
	entity.ReplenishmentSuggested,
	entity.ReplenishmentApproved,
	entity.ReplenishmentRequested,
	entity.ReplenishmentInTransit,
	entity.ReplenishmentPartiallyReceived,
}

// ReplenishmentRepo implementación de ReplenishmentRepository sobre PostgreSQL
// (usable con pool o tx).
type ReplenishmentRepo struct {
	q Querier
}

// NewReplenishmentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReplenishmentRepository(q Querier) *ReplenishmentRepo {
	return &ReplenishmentRepo{q: q}
}

// Create persiste una solicitud nueva. El índice parcial único sobre
// stock_record_id WHERE status abierto convierte una carrera de sugerencias
// duplicadas en violación 23505, que se reporta como ErrConflict.
func (r *ReplenishmentRepo) Create(req *entity.ReplenishmentRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	query := `
		INSERT INTO replenishment_requests (` + replenishmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		req.ID, req.StockRecordID, req.ItemID, req.LocationID, req.Type, req.Status, req.Priority,
		req.QuantitySuggested, req.QuantityRequested, req.QuantityFulfilled, nullIfEmpty(req.SupplierID),
		nullIfEmpty(req.ApprovedBy), req.ExpectedDeliveryDate, req.ActualDeliveryDate, nullIfEmpty(req.CancelReason),
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create replenishment request: %w", err)
	}
	return nil
}

// Update persiste una transición de estado de la solicitud.
func (r *ReplenishmentRepo) Update(req *entity.ReplenishmentRequest) error {
	query := `
		UPDATE replenishment_requests SET
			status = $2, priority = $3, quantity_requested = $4, quantity_fulfilled = $5,
			supplier_id = $6, approved_by = $7, expected_delivery_date = $8,
			actual_delivery_date = $9, cancel_reason = $10, updated_at = $11
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		req.ID, req.Status, req.Priority, req.QuantityRequested, req.QuantityFulfilled,
		nullIfEmpty(req.SupplierID), nullIfEmpty(req.ApprovedBy), req.ExpectedDeliveryDate,
		req.ActualDeliveryDate, nullIfEmpty(req.CancelReason), req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update replenishment request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una solicitud por id.
func (r *ReplenishmentRepo) GetByID(id string) (*entity.ReplenishmentRequest, error) {
	query := `SELECT ` + replenishmentColumns + ` FROM replenishment_requests WHERE id = $1`
	req, err := scanReplenishment(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get replenishment request: %w", err)
	}
	return req, nil
}

// GetOpenByRecord devuelve la solicitud abierta del registro, o nil si no hay.
func (r *ReplenishmentRepo) GetOpenByRecord(stockRecordID string) (*entity.ReplenishmentRequest, error) {
	query := `SELECT ` + replenishmentColumns + `
		FROM replenishment_requests
		WHERE stock_record_id = $1 AND status = ANY($2)
		LIMIT 1`
	req, err := scanReplenishment(r.q.QueryRow(context.Background(), query, stockRecordID, openStatuses))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open replenishment: %w", err)
	}
	return req, nil
}

// List lista solicitudes, opcionalmente solo abiertas, de más reciente a más antigua.
func (r *ReplenishmentRepo) List(onlyOpen bool, limit, offset int) ([]*entity.ReplenishmentRequest, error) {
	query := `SELECT ` + replenishmentColumns + ` FROM replenishment_requests`
	args := []any{}
	if onlyOpen {
		query += ` WHERE status = ANY($1) ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		args = append(args, openStatuses, limit, offset)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list replenishment requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReplenishmentRequest
	for rows.Next() {
		req, err := scanReplenishment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan replenishment request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func scanReplenishment(row pgx.Row) (*entity.ReplenishmentRequest, error) {
	var req entity.ReplenishmentRequest
	var supplier, approvedBy, cancelReason *string
	err := row.Scan(
		&req.ID, &req.StockRecordID, &req.ItemID, &req.LocationID, &req.Type, &req.Status, &req.Priority,
		&req.QuantitySuggested, &req.QuantityRequested, &req.QuantityFulfilled, &supplier,
		&approvedBy, &req.ExpectedDeliveryDate, &req.ActualDeliveryDate, &cancelReason,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.SupplierID = deref(supplier)
	req.ApprovedBy = deref(approvedBy)
	req.CancelReason = deref(cancelReason)
	return &req, nil
}
