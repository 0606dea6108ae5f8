package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación de AlertRepository sobre PostgreSQL (usable con pool o tx).
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// Create persiste una alerta abierta. El índice parcial único
// (stock_record_id, condition) WHERE status = 'OPEN' respalda el invariante
// "a lo sumo una abierta por condición".
func (r *AlertRepo) Create(a *entity.Alert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_alerts (id, stock_record_id, item_id, location_id, condition, severity, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		a.ID, a.StockRecordID, a.ItemID, a.LocationID, a.Condition, a.Severity, a.Message, a.Status, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create alert: %w", err)
	}
	return nil
}

// ListOpenByRecord devuelve las alertas abiertas del registro.
func (r *AlertRepo) ListOpenByRecord(stockRecordID string) ([]*entity.Alert, error) {
	query := `
		SELECT id, stock_record_id, item_id, location_id, condition, severity, message, status,
		       resolved_reason, resolved_at, created_at
		FROM stock_alerts
		WHERE stock_record_id = $1 AND status = $2
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, stockRecordID, entity.AlertStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("list open alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Alert
	for rows.Next() {
		var a entity.Alert
		var reason *string
		if err := rows.Scan(&a.ID, &a.StockRecordID, &a.ItemID, &a.LocationID, &a.Condition,
			&a.Severity, &a.Message, &a.Status, &reason, &a.ResolvedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.ResolvedReason = deref(reason)
		list = append(list, &a)
	}
	return list, rows.Err()
}

// Resolve marca la alerta como resuelta con motivo y fecha (no se elimina).
func (r *AlertRepo) Resolve(id, reason string, at time.Time) error {
	query := `
		UPDATE stock_alerts
		SET status = $2, resolved_reason = $3, resolved_at = $4
		WHERE id = $1 AND status = $5`
	tag, err := r.q.Exec(context.Background(), query, id, entity.AlertStatusResolved, reason, at, entity.AlertStatusOpen)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("resolve alert: alerta %s no estaba abierta", id)
	}
	return nil
}
