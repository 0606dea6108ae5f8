package replenishment_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/application/replenishment"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles en memoria del gestor de reposición. El TxRunner hace rollback por
// snapshot si la función devuelve error, para poder verificar que la recepción
// de mercancía y su asiento en el libro son una sola unidad atómica.
// ──────────────────────────────────────────────────────────────────────────────

type store struct {
	records   map[string]*entity.StockRecord
	movements map[string]*entity.MovementEntry
	alerts    map[string]*entity.Alert
	repls     map[string]*entity.ReplenishmentRequest
}

func newStore() *store {
	return &store{
		records:   map[string]*entity.StockRecord{},
		movements: map[string]*entity.MovementEntry{},
		alerts:    map[string]*entity.Alert{},
		repls:     map[string]*entity.ReplenishmentRequest{},
	}
}

func key(itemID, locationID string) string { return itemID + "/" + locationID }

type recordRepo struct{ s *store }

func (r recordRepo) Get(itemID, locationID string) (*entity.StockRecord, error) {
	rec := r.s.records[key(itemID, locationID)]
	if rec == nil {
		return nil, nil
	}
	c := *rec
	return &c, nil
}
func (r recordRepo) GetByID(id string) (*entity.StockRecord, error) {
	for _, rec := range r.s.records {
		if rec.ID == id {
			c := *rec
			return &c, nil
		}
	}
	return nil, nil
}
func (r recordRepo) GetForUpdate(itemID, locationID string) (*entity.StockRecord, error) {
	return r.Get(itemID, locationID)
}
func (r recordRepo) Upsert(rec *entity.StockRecord) error {
	c := *rec
	r.s.records[key(rec.ItemID, rec.LocationID)] = &c
	return nil
}

type movementRepo struct{ s *store }

func (r movementRepo) Create(m *entity.MovementEntry) error {
	c := *m
	r.s.movements[m.ID] = &c
	return nil
}
func (r movementRepo) GetByID(id string) (*entity.MovementEntry, error) {
	m := r.s.movements[id]
	if m == nil {
		return nil, nil
	}
	c := *m
	return &c, nil
}
func (r movementRepo) MarkCancelled(id, reason string, at time.Time) error { return nil }
func (r movementRepo) ListByRecord(string, *time.Time, *time.Time, int, int) ([]*entity.MovementEntry, error) {
	return nil, nil
}
func (r movementRepo) ListByItem(string, *time.Time, *time.Time, int, int) ([]*entity.MovementEntry, error) {
	return nil, nil
}

type alertRepo struct{ s *store }

func (r alertRepo) Create(a *entity.Alert) error {
	c := *a
	r.s.alerts[a.ID] = &c
	return nil
}
func (r alertRepo) ListOpenByRecord(stockRecordID string) ([]*entity.Alert, error) {
	var out []*entity.Alert
	for _, a := range r.s.alerts {
		if a.StockRecordID == stockRecordID && a.Status == entity.AlertStatusOpen {
			c := *a
			out = append(out, &c)
		}
	}
	return out, nil
}
func (r alertRepo) Resolve(id, reason string, at time.Time) error {
	c := *r.s.alerts[id]
	c.Status = entity.AlertStatusResolved
	c.ResolvedReason = reason
	c.ResolvedAt = &at
	r.s.alerts[id] = &c
	return nil
}

type replRepo struct{ s *store }

func (r replRepo) Create(req *entity.ReplenishmentRequest) error {
	c := *req
	r.s.repls[req.ID] = &c
	return nil
}
func (r replRepo) Update(req *entity.ReplenishmentRequest) error {
	c := *req
	r.s.repls[req.ID] = &c
	return nil
}
func (r replRepo) GetByID(id string) (*entity.ReplenishmentRequest, error) {
	req := r.s.repls[id]
	if req == nil {
		return nil, nil
	}
	c := *req
	return &c, nil
}
func (r replRepo) GetOpenByRecord(stockRecordID string) (*entity.ReplenishmentRequest, error) {
	for _, req := range r.s.repls {
		if req.StockRecordID == stockRecordID && req.Status.IsOpen() {
			c := *req
			return &c, nil
		}
	}
	return nil, nil
}
func (r replRepo) List(onlyOpen bool, limit, offset int) ([]*entity.ReplenishmentRequest, error) {
	var out []*entity.ReplenishmentRequest
	for _, req := range r.s.repls {
		if onlyOpen && !req.Status.IsOpen() {
			continue
		}
		c := *req
		out = append(out, &c)
	}
	return out, nil
}

type txRunner struct{ s *store }

func (t txRunner) Run(ctx context.Context, fn func(
	repository.StockRecordRepository,
	repository.MovementRepository,
	repository.AlertRepository,
	repository.ReplenishmentRepository,
) error) error {
	snapRecords := make(map[string]*entity.StockRecord, len(t.s.records))
	for k, v := range t.s.records {
		snapRecords[k] = v
	}
	snapMovs := make(map[string]*entity.MovementEntry, len(t.s.movements))
	for k, v := range t.s.movements {
		snapMovs[k] = v
	}
	snapAlerts := make(map[string]*entity.Alert, len(t.s.alerts))
	for k, v := range t.s.alerts {
		snapAlerts[k] = v
	}
	snapRepls := make(map[string]*entity.ReplenishmentRequest, len(t.s.repls))
	for k, v := range t.s.repls {
		snapRepls[k] = v
	}
	err := fn(recordRepo{t.s}, movementRepo{t.s}, alertRepo{t.s}, replRepo{t.s})
	if err != nil {
		t.s.records = snapRecords
		t.s.movements = snapMovs
		t.s.alerts = snapAlerts
		t.s.repls = snapRepls
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

var (
	ctx    = context.Background()
	mgrNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	s   *store
	mgr *replenishment.Manager
}

func newFixture() *fixture {
	s := newStore()
	tx := txRunner{s}
	uc := ledger.NewUseCase(tx, nil, alerts.NewEngine(0), logger.Nop(),
		recordRepo{s}, movementRepo{s}, alertRepo{s})
	mgr := replenishment.NewManager(tx, uc, logger.Nop(), replRepo{s}, recordRepo{s})
	return &fixture{s: s, mgr: mgr}
}

// seedRecord deja un registro bajo su punto de reorden.
func (f *fixture) seedRecord(onHand, minimum, reorder int64) *entity.StockRecord {
	rec := entity.NewStockRecord("rec-1", "ITEM-1", "LOC-1", mgrNow)
	rec.QuantityOnHand = decimal.NewFromInt(onHand)
	rec.QuantityMinimum = decimal.NewFromInt(minimum)
	rec.ReorderPoint = decimal.NewFromInt(reorder)
	rec.AverageUnitCost = decimal.NewFromInt(5)
	rec.RecomputeTotalValue()
	f.s.records[key("ITEM-1", "LOC-1")] = rec
	return rec
}

func TestSuggestIfNeeded_CreaLaSugerencia(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, created, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, entity.ReplenishmentSuggested, req.Status)
	assert.Equal(t, entity.PriorityHigh, req.Priority, "bajo el mínimo sin llegar a cero")
}

func TestSuggestIfNeeded_DevuelveLaAbiertaSinDuplicar(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	first, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)

	second, created, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID, "a lo sumo una solicitud abierta por registro")
	assert.Len(t, f.s.repls, 1)
}

func TestSuggestIfNeeded_SinNecesidadEsConflicto(t *testing.T) {
	f := newFixture()
	f.seedRecord(50, 5, 10)
	_, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestSuggestIfNeeded_RegistroInexistente(t *testing.T) {
	f := newFixture()
	_, _, err := f.mgr.SuggestIfNeeded(ctx, "NADA", "LOC-1", mgrNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCicloCompleto_HastaRecepcionTotal(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)

	req, err = f.mgr.Approve(ctx, req.ID, "user-1", nil, mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentApproved, req.Status)

	req, err = f.mgr.Request(ctx, req.ID, "SUP-1", mgrNow.AddDate(0, 0, 7), mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentRequested, req.Status)

	req, err = f.mgr.MarkInTransit(ctx, req.ID, mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentInTransit, req.Status)
}

func TestReceivePartial_AsientaLaEntradaEnLaMismaTx(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.Request(ctx, req.ID, "SUP-1", mgrNow.AddDate(0, 0, 7), mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.MarkInTransit(ctx, req.ID, mgrNow)
	require.NoError(t, err)

	qty := req.QuantityRequested
	req, res, err := f.mgr.ReceivePartial(ctx, req.ID, qty, decimal.NewFromInt(7), "", "user-1", mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentReceived, req.Status)
	require.NotNil(t, req.ActualDeliveryDate)

	mov := res.Movement()
	require.NotNil(t, mov, "la recepción asienta una entrada en el libro")
	assert.Equal(t, entity.MovementTypeEntry, mov.Type)
	assert.Equal(t, "reposicion:"+req.ID, mov.SourceDocument)
	assert.True(t, res.Record.QuantityOnHand.Equal(decimal.NewFromInt(4).Add(qty)))
}

func TestReceivePartial_ParcialDejaLaSolicitudAbierta(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.Request(ctx, req.ID, "SUP-1", mgrNow.AddDate(0, 0, 7), mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.MarkInTransit(ctx, req.ID, mgrNow)
	require.NoError(t, err)

	parcial := req.QuantityRequested.Div(decimal.NewFromInt(2)).Round(3)
	req, _, err = f.mgr.ReceivePartial(ctx, req.ID, parcial, decimal.NewFromInt(7), "REM-7", "user-1", mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentPartiallyReceived, req.Status)
	assert.True(t, req.Status.IsOpen())
}

func TestReceivePartial_RegistroBloqueadoNoDejaEfectosParciales(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.Request(ctx, req.ID, "SUP-1", mgrNow.AddDate(0, 0, 7), mgrNow)
	require.NoError(t, err)
	req, err = f.mgr.MarkInTransit(ctx, req.ID, mgrNow)
	require.NoError(t, err)

	// El registro se bloquea mientras la mercancía viene en camino.
	f.s.records[key("ITEM-1", "LOC-1")].Status = entity.RecordStatusBlocked

	_, _, err = f.mgr.ReceivePartial(ctx, req.ID, req.QuantityRequested, decimal.NewFromInt(7), "", "user-1", mgrNow)
	require.ErrorIs(t, err, domain.ErrRecordBlocked)

	// Rollback completo: la solicitud sigue en tránsito y el libro sin asientos.
	after := f.s.repls[req.ID]
	assert.Equal(t, entity.ReplenishmentInTransit, after.Status)
	assert.True(t, after.QuantityFulfilled.IsZero())
	assert.Empty(t, f.s.movements)
}

func TestCancel_DesdeSugeridaYNoDesdeTerminal(t *testing.T) {
	f := newFixture()
	f.seedRecord(4, 5, 10)

	req, _, err := f.mgr.SuggestIfNeeded(ctx, "ITEM-1", "LOC-1", mgrNow)
	require.NoError(t, err)

	req, err = f.mgr.Cancel(ctx, req.ID, "no se comprará", mgrNow)
	require.NoError(t, err)
	assert.Equal(t, entity.ReplenishmentCancelled, req.Status)

	_, err = f.mgr.Cancel(ctx, req.ID, "otra vez", mgrNow)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestApprove_SolicitudInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.mgr.Approve(ctx, "no-existe", "user-1", nil, mgrNow)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenForRecord_SinSolicitudAbierta(t *testing.T) {
	f := newFixture()
	f.seedRecord(50, 5, 10)
	_, err := f.mgr.OpenForRecord(ctx, "ITEM-1", "LOC-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
