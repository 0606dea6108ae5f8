package ledger_test

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test en memoria: un memStore compartido implementa los cuatro
// puertos de persistencia y un TxRunner con rollback real (snapshot de los
// mapas al entrar, restauración si la función devuelve error). Los getters
// devuelven clones y Upsert guarda clones, igual que una fila de BD: mutar el
// puntero obtenido sin persistirlo no cambia el estado committeado.
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	records   map[string]*entity.StockRecord // clave artículo/ubicación
	movements map[string]*entity.MovementEntry
	alerts    map[string]*entity.Alert
	repls     map[string]*entity.ReplenishmentRequest
}

func newMemStore() *memStore {
	return &memStore{
		records:   map[string]*entity.StockRecord{},
		movements: map[string]*entity.MovementEntry{},
		alerts:    map[string]*entity.Alert{},
		repls:     map[string]*entity.ReplenishmentRequest{},
	}
}

func recordKey(itemID, locationID string) string { return itemID + "/" + locationID }

func cloneRecord(r *entity.StockRecord) *entity.StockRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

func cloneMovement(m *entity.MovementEntry) *entity.MovementEntry {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

func cloneRepl(r *entity.ReplenishmentRequest) *entity.ReplenishmentRequest {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ── StockRecordRepository ─────────────────────────────────────────────────────

type memRecordRepo struct{ s *memStore }

func (r memRecordRepo) Get(itemID, locationID string) (*entity.StockRecord, error) {
	return cloneRecord(r.s.records[recordKey(itemID, locationID)]), nil
}

func (r memRecordRepo) GetByID(id string) (*entity.StockRecord, error) {
	for _, rec := range r.s.records {
		if rec.ID == id {
			return cloneRecord(rec), nil
		}
	}
	return nil, nil
}

func (r memRecordRepo) GetForUpdate(itemID, locationID string) (*entity.StockRecord, error) {
	return r.Get(itemID, locationID)
}

func (r memRecordRepo) Upsert(rec *entity.StockRecord) error {
	r.s.records[recordKey(rec.ItemID, rec.LocationID)] = cloneRecord(rec)
	return nil
}

// ── MovementRepository ────────────────────────────────────────────────────────

type memMovementRepo struct{ s *memStore }

func (r memMovementRepo) Create(m *entity.MovementEntry) error {
	r.s.movements[m.ID] = cloneMovement(m)
	return nil
}

func (r memMovementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	return cloneMovement(r.s.movements[id]), nil
}

func (r memMovementRepo) MarkCancelled(id, reason string, at time.Time) error {
	m := cloneMovement(r.s.movements[id])
	m.Status = entity.MovementStatusCancelled
	m.CancelReason = reason
	m.CancelledAt = &at
	r.s.movements[id] = m
	return nil
}

func (r memMovementRepo) ListByRecord(stockRecordID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, m := range r.s.movements {
		if m.StockRecordID == stockRecordID {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

func (r memMovementRepo) ListByItem(itemID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	var out []*entity.MovementEntry
	for _, m := range r.s.movements {
		if m.ItemID == itemID {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

// ── AlertRepository ───────────────────────────────────────────────────────────

type memAlertRepo struct{ s *memStore }

func (r memAlertRepo) Create(a *entity.Alert) error {
	c := *a
	r.s.alerts[a.ID] = &c
	return nil
}

func (r memAlertRepo) ListOpenByRecord(stockRecordID string) ([]*entity.Alert, error) {
	var out []*entity.Alert
	for _, a := range r.s.alerts {
		if a.StockRecordID == stockRecordID && a.Status == entity.AlertStatusOpen {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r memAlertRepo) Resolve(id, reason string, at time.Time) error {
	c := *r.s.alerts[id]
	c.Status = entity.AlertStatusResolved
	c.ResolvedReason = reason
	c.ResolvedAt = &at
	r.s.alerts[id] = &c
	return nil
}

// ── ReplenishmentRepository ───────────────────────────────────────────────────

type memReplRepo struct{ s *memStore }

func (r memReplRepo) Create(req *entity.ReplenishmentRequest) error {
	r.s.repls[req.ID] = cloneRepl(req)
	return nil
}

func (r memReplRepo) Update(req *entity.ReplenishmentRequest) error {
	r.s.repls[req.ID] = cloneRepl(req)
	return nil
}

func (r memReplRepo) GetByID(id string) (*entity.ReplenishmentRequest, error) {
	return cloneRepl(r.s.repls[id]), nil
}

func (r memReplRepo) GetOpenByRecord(stockRecordID string) (*entity.ReplenishmentRequest, error) {
	for _, req := range r.s.repls {
		if req.StockRecordID == stockRecordID && req.Status.IsOpen() {
			return cloneRepl(req), nil
		}
	}
	return nil, nil
}

func (r memReplRepo) List(onlyOpen bool, limit, offset int) ([]*entity.ReplenishmentRequest, error) {
	var out []*entity.ReplenishmentRequest
	for _, req := range r.s.repls {
		if onlyOpen && !req.Status.IsOpen() {
			continue
		}
		out = append(out, cloneRepl(req))
	}
	return out, nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (t memTxRunner) Run(ctx context.Context, fn func(
	recordRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	alertRepo repository.AlertRepository,
	replRepo repository.ReplenishmentRepository,
) error) error {
	snapRecords := make(map[string]*entity.StockRecord, len(t.s.records))
	for k, v := range t.s.records {
		snapRecords[k] = v
	}
	snapMovements := make(map[string]*entity.MovementEntry, len(t.s.movements))
	for k, v := range t.s.movements {
		snapMovements[k] = v
	}
	snapAlerts := make(map[string]*entity.Alert, len(t.s.alerts))
	for k, v := range t.s.alerts {
		snapAlerts[k] = v
	}
	snapRepls := make(map[string]*entity.ReplenishmentRequest, len(t.s.repls))
	for k, v := range t.s.repls {
		snapRepls[k] = v
	}

	err := fn(memRecordRepo{t.s}, memMovementRepo{t.s}, memAlertRepo{t.s}, memReplRepo{t.s})
	if err != nil {
		// rollback
		t.s.records = snapRecords
		t.s.movements = snapMovements
		t.s.alerts = snapAlerts
		t.s.repls = snapRepls
	}
	return err
}

// ── Notifier ──────────────────────────────────────────────────────────────────

// memNotifier acumula las alertas despachadas al canal externo.
type memNotifier struct {
	notified []*entity.Alert
}

func (n *memNotifier) Notify(ctx context.Context, a *entity.Alert) error {
	n.notified = append(n.notified, a)
	return nil
}

var _ ledger.Notifier = (*memNotifier)(nil)
var _ ledger.TxRunner = memTxRunner{}
var _ repository.StockRecordRepository = memRecordRepo{}
var _ repository.MovementRepository = memMovementRepo{}
var _ repository.AlertRepository = memAlertRepo{}
var _ repository.ReplenishmentRepository = memReplRepo{}
