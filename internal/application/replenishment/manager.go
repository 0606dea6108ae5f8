package replenishment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Manager acompaña el ciclo de vida de las solicitudes de reposición:
// sugerida → aprobada → solicitada → en tránsito → (recibida parcial ⇄) recibida,
// con cancelación desde cualquier estado no terminal. Toda transición corre en
// transacción; la recepción asienta la entrada en el libro dentro de la misma tx.
type Manager struct {
	txRunner ledger.TxRunner
	ledgerUC *ledger.UseCase
	log      *logger.Logger

	// Repositorios sobre el pool, solo consultas.
	replRepo   repository.ReplenishmentRepository
	recordRepo repository.StockRecordRepository
}

// NewManager construye el gestor de reposición.
func NewManager(
	txRunner ledger.TxRunner,
	ledgerUC *ledger.UseCase,
	log *logger.Logger,
	replRepo repository.ReplenishmentRepository,
	recordRepo repository.StockRecordRepository,
) *Manager {
	return &Manager{
		txRunner:   txRunner,
		ledgerUC:   ledgerUC,
		log:        log,
		replRepo:   replRepo,
		recordRepo: recordRepo,
	}
}

// SuggestIfNeeded crea la sugerencia de reposición del registro si hace falta
// (en o bajo el punto de reorden) y no existe ya una solicitud abierta.
// Devuelve la solicitud abierta en ambos casos; created indica si es nueva.
func (m *Manager) SuggestIfNeeded(ctx context.Context, itemID, locationID string, now time.Time) (req *entity.ReplenishmentRequest, created bool, err error) {
	if itemID == "" || locationID == "" {
		return nil, false, domain.ErrInvalidInput
	}
	err = m.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(itemID, locationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		existing, err := replRepo.GetOpenByRecord(rec.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			req = existing
			return nil
		}
		suggestion := inventory.SuggestReplenishment(rec, now)
		if suggestion == nil {
			return domain.ErrConflict // el registro no necesita reposición
		}
		if err := replRepo.Create(suggestion); err != nil {
			return err
		}
		req = suggestion
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return req, created, nil
}

// Approve aprueba una sugerencia (solo desde suggested) fijando la cantidad
// solicitada, con override opcional.
func (m *Manager) Approve(ctx context.Context, requestID, approverID string, quantityOverride *decimal.Decimal, now time.Time) (*entity.ReplenishmentRequest, error) {
	return m.transition(ctx, requestID, func(r *entity.ReplenishmentRequest) error {
		return r.Approve(approverID, quantityOverride, now)
	})
}

// Request pasa la solicitud a requested (desde approved, o suggested directo)
// con proveedor y fecha esperada de entrega.
func (m *Manager) Request(ctx context.Context, requestID, supplierID string, expectedDate, now time.Time) (*entity.ReplenishmentRequest, error) {
	if supplierID == "" {
		return nil, domain.ErrInvalidInput
	}
	return m.transition(ctx, requestID, func(r *entity.ReplenishmentRequest) error {
		return r.Request(supplierID, expectedDate, now)
	})
}

// MarkInTransit marca la solicitud en tránsito (solo desde requested).
func (m *Manager) MarkInTransit(ctx context.Context, requestID string, now time.Time) (*entity.ReplenishmentRequest, error) {
	return m.transition(ctx, requestID, func(r *entity.ReplenishmentRequest) error {
		return r.MarkInTransit(now)
	})
}

// Cancel cancela la solicitud desde cualquier estado no terminal.
func (m *Manager) Cancel(ctx context.Context, requestID, reason string, now time.Time) (*entity.ReplenishmentRequest, error) {
	return m.transition(ctx, requestID, func(r *entity.ReplenishmentRequest) error {
		return r.Cancel(reason, now)
	})
}

// transition carga la solicitud, aplica la transición de estado y persiste,
// todo en una transacción.
func (m *Manager) transition(ctx context.Context, requestID string, apply func(*entity.ReplenishmentRequest) error) (*entity.ReplenishmentRequest, error) {
	if requestID == "" {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.ReplenishmentRequest
	err := m.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		req, err := replRepo.GetByID(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := apply(req); err != nil {
			return err
		}
		if err := replRepo.Update(req); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReceivePartial registra una recepción (total o parcial) desde inTransit o
// partiallyReceived: acumula lo recibido, cierra la solicitud si quedó cubierta
// y asienta la entrada en el libro del StockRecord vinculado — todo en la misma
// transacción. La entrada actualiza el costo promedio con el costo recibido.
func (m *Manager) ReceivePartial(ctx context.Context, requestID string, quantity, unitCost decimal.Decimal, sourceDocument, actor string, now time.Time) (*entity.ReplenishmentRequest, *ledger.MutationResult, error) {
	if requestID == "" || quantity.LessThanOrEqual(decimal.Zero) || unitCost.LessThan(decimal.Zero) {
		return nil, nil, domain.ErrInvalidInput
	}

	var out *entity.ReplenishmentRequest
	res := &ledger.MutationResult{}
	err := m.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		req, err := replRepo.GetByID(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if err := req.ReceivePartial(quantity, now); err != nil {
			return err
		}
		if err := replRepo.Update(req); err != nil {
			return err
		}

		doc := sourceDocument
		if doc == "" {
			doc = "reposicion:" + req.ID
		}
		if err := m.ledgerUC.RecordEntryInTx(recordRepo, movRepo, alertRepo, replRepo, ledger.MovementInput{
			ItemID:         req.ItemID,
			LocationID:     req.LocationID,
			Quantity:       quantity,
			UnitCost:       &unitCost,
			SourceDocument: doc,
			Actor:          actor,
			OccurredAt:     now,
		}, res); err != nil {
			return err
		}
		out = req
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	m.ledgerUC.DispatchNotifications(ctx, res)
	return out, res, nil
}

// OpenForRecord devuelve la solicitud abierta del registro (o ErrNotFound).
func (m *Manager) OpenForRecord(ctx context.Context, itemID, locationID string) (*entity.ReplenishmentRequest, error) {
	rec, err := m.recordRepo.Get(itemID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	req, err := m.replRepo.GetOpenByRecord(rec.ID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

// List lista solicitudes, opcionalmente solo las abiertas.
func (m *Manager) List(ctx context.Context, onlyOpen bool, limit, offset int) ([]*entity.ReplenishmentRequest, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return m.replRepo.List(onlyOpen, limit, offset)
}
