package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `
	id, transaction_id, stock_record_id, item_id, location_id, type, quantity,
	unit_cost, balance_before, balance_after, source_document, origin_location,
	destination_location, actor, status, cancel_reason, cancelled_at,
	occurred_at, created_at`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL
// (usable con pool o tx). Tabla append-only: nunca se borran filas.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste un asiento del libro.
func (r *MovementRepo) Create(m *entity.MovementEntry) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.TransactionID, m.StockRecordID, m.ItemID, m.LocationID, m.Type, m.Quantity,
		m.UnitCost, m.BalanceBefore, m.BalanceAfter, m.SourceDocument, nullIfEmpty(m.OriginLocation),
		nullIfEmpty(m.DestinationLoc), nullIfEmpty(m.Actor), m.Status, nullIfEmpty(m.CancelReason),
		m.CancelledAt, m.OccurredAt, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *MovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE id = $1`
	row := r.q.QueryRow(context.Background(), query, id)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// MarkCancelled transiciona el movimiento a CANCELLED con motivo y fecha.
// La fila no se toca en ningún otro campo: el asiento es inmutable.
func (r *MovementRepo) MarkCancelled(id, reason string, at time.Time) error {
	query := `
		UPDATE stock_movements
		SET status = $2, cancel_reason = $3, cancelled_at = $4
		WHERE id = $1 AND status <> $2`
	tag, err := r.q.Exec(context.Background(), query, id, entity.MovementStatusCancelled, reason, at)
	if err != nil {
		return fmt.Errorf("mark movement cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark movement cancelled: movimiento %s no actualizado", id)
	}
	return nil
}

// ListByRecord lista movimientos de un registro en un rango de fechas.
func (r *MovementRepo) ListByRecord(stockRecordID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	return r.list("stock_record_id", stockRecordID, from, to, limit, offset)
}

// ListByItem lista movimientos de un artículo (todas las ubicaciones) en un rango de fechas.
func (r *MovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	return r.list("item_id", itemID, from, to, limit, offset)
}

func (r *MovementRepo) list(column, value string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE ` + column + ` = $1`
	args := []any{value}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.MovementEntry, error) {
	var m entity.MovementEntry
	var origin, dest, actor, cancelReason *string
	err := row.Scan(
		&m.ID, &m.TransactionID, &m.StockRecordID, &m.ItemID, &m.LocationID, &m.Type, &m.Quantity,
		&m.UnitCost, &m.BalanceBefore, &m.BalanceAfter, &m.SourceDocument, &origin,
		&dest, &actor, &m.Status, &cancelReason,
		&m.CancelledAt, &m.OccurredAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.OriginLocation = deref(origin)
	m.DestinationLoc = deref(dest)
	m.Actor = deref(actor)
	m.CancelReason = deref(cancelReason)
	return &m, nil
}
