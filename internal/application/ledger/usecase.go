package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/alerts"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// UseCase implementa el libro de movimientos: toda mutación de cantidad pasa
// por aquí, de forma transaccional y con bloqueo de fila (SELECT FOR UPDATE)
// sobre el StockRecord afectado. La secuencia por mutación es explícita:
// actualizar balance → recalcular valor → evaluar alertas → evaluar reposición.
type UseCase struct {
	txRunner TxRunner
	notifier Notifier
	engine   *alerts.Engine
	log      *logger.Logger

	// Repositorios sobre el pool (fuera de transacción), solo para consultas.
	recordRepo repository.StockRecordRepository
	movRepo    repository.MovementRepository
	alertRepo  repository.AlertRepository
}

// NewUseCase construye el caso de uso del libro.
func NewUseCase(
	txRunner TxRunner,
	notifier Notifier,
	engine *alerts.Engine,
	log *logger.Logger,
	recordRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	alertRepo repository.AlertRepository,
) *UseCase {
	return &UseCase{
		txRunner:   txRunner,
		notifier:   notifier,
		engine:     engine,
		log:        log,
		recordRepo: recordRepo,
		movRepo:    movRepo,
		alertRepo:  alertRepo,
	}
}

// MovementInput entrada común de entradas, salidas, pérdidas y devoluciones.
// Actor y OccurredAt se pasan explícitos: sin usuario global ni reloj oculto.
type MovementInput struct {
	ItemID         string
	LocationID     string
	Quantity       decimal.Decimal
	UnitCost       *decimal.Decimal // obligatorio en entradas y devoluciones
	SourceDocument string
	Actor          string
	OccurredAt     time.Time
}

// TransferInput entrada de traslados entre ubicaciones.
type TransferInput struct {
	ItemID         string
	FromLocationID string
	ToLocationID   string
	Quantity       decimal.Decimal
	SourceDocument string
	Actor          string
	OccurredAt     time.Time
}

// AdjustmentInput entrada de ajustes por conteo físico (delta con signo).
type AdjustmentInput struct {
	ItemID     string
	LocationID string
	Delta      decimal.Decimal
	Reason     string
	Actor      string
	OccurredAt time.Time
}

// ReservationInput entrada de reservas y liberaciones.
type ReservationInput struct {
	ItemID      string
	LocationID  string
	Quantity    decimal.Decimal
	DocumentRef string
	Actor       string
	OccurredAt  time.Time
}

// ThresholdsInput actualización de umbrales y datos de lote de un registro.
type ThresholdsInput struct {
	ItemID         string
	LocationID     string
	Minimum        decimal.Decimal
	Maximum        *decimal.Decimal
	ReorderPoint   decimal.Decimal
	LeadTimeDays   int
	LotNumber      string
	ExpirationDate *time.Time
	OccurredAt     time.Time
}

// RecordEntry registra una entrada: primero actualiza el costo promedio
// ponderado (la ponderación exige el balance previo), luego suma la cantidad,
// recalcula el valor total y asienta el movimiento.
func (uc *UseCase) RecordEntry(ctx context.Context, in MovementInput) (*MutationResult, error) {
	return uc.recordIncrease(ctx, entity.MovementTypeEntry, in)
}

// RecordReturn registra una devolución de cliente: misma mecánica que la
// entrada, con tipo RETURN en el libro.
func (uc *UseCase) RecordReturn(ctx context.Context, in MovementInput) (*MutationResult, error) {
	return uc.recordIncrease(ctx, entity.MovementTypeReturn, in)
}

func (uc *UseCase) recordIncrease(ctx context.Context, mType entity.MovementType, in MovementInput) (*MutationResult, error) {
	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		return uc.applyIncrease(recordRepo, movRepo, alertRepo, replRepo, mType, in, res)
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// RecordEntryInTx ejecuta una entrada usando los repositorios proporcionados
// (misma transacción del caller). Lo usa el gestor de reposición para que la
// recepción de mercancía y su asiento en el libro se confirmen como una sola
// unidad atómica. El caller despacha las notificaciones tras el commit.
func (uc *UseCase) RecordEntryInTx(
	recordRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	alertRepo repository.AlertRepository,
	replRepo repository.ReplenishmentRepository,
	in MovementInput,
	res *MutationResult,
) error {
	return uc.applyIncrease(recordRepo, movRepo, alertRepo, replRepo, entity.MovementTypeEntry, in, res)
}

// applyIncrease aplica una entrada o devolución sobre la fila ya dentro de la tx:
// costo promedio primero, luego cantidad, valor total, asiento y estado derivado.
func (uc *UseCase) applyIncrease(
	recordRepo repository.StockRecordRepository,
	movRepo repository.MovementRepository,
	alertRepo repository.AlertRepository,
	replRepo repository.ReplenishmentRepository,
	mType entity.MovementType,
	in MovementInput,
	res *MutationResult,
) error {
	qty := entity.Quantize(in.Quantity)
	if in.ItemID == "" || in.LocationID == "" || !qty.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	if in.UnitCost == nil || in.UnitCost.LessThan(decimal.Zero) {
		return domain.ErrInvalidInput
	}
	unitCost := *in.UnitCost

	rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
	if err != nil {
		return err
	}
	if rec == nil {
		// Primer estocado del artículo en esta ubicación
		rec = entity.NewStockRecord(uuid.New().String(), in.ItemID, in.LocationID, in.OccurredAt)
	}
	if rec.Status == entity.RecordStatusBlocked {
		return domain.ErrRecordBlocked
	}

	before := rec.QuantityOnHand
	rec.AverageUnitCost = inventory.CostCalculator(before, rec.AverageUnitCost, qty, unitCost)
	rec.QuantityOnHand = before.Add(qty)
	rec.RecomputeTotalValue()
	rec.UpdatedAt = in.OccurredAt
	if err := recordRepo.Upsert(rec); err != nil {
		return err
	}

	mov := uc.newConfirmedMovement(rec, mType, qty, unitCost, before, in.SourceDocument, in.Actor, in.OccurredAt)
	if err := movRepo.Create(mov); err != nil {
		return err
	}

	res.Record = rec
	res.Movements = append(res.Movements, mov)
	uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, false, res)
	return nil
}

// RecordExit registra una salida; falla con ErrInsufficientAvailable si la
// cantidad supera la disponible (en mano − reservada). Evalúa alertas y
// reposición al cierre.
func (uc *UseCase) RecordExit(ctx context.Context, in MovementInput) (*MutationResult, error) {
	return uc.recordDecrease(ctx, entity.MovementTypeExit, in)
}

// RecordLoss registra una pérdida (merma, rotura, robo) con la misma
// verificación de disponibilidad que una salida.
func (uc *UseCase) RecordLoss(ctx context.Context, in MovementInput) (*MutationResult, error) {
	return uc.recordDecrease(ctx, entity.MovementTypeLoss, in)
}

func (uc *UseCase) recordDecrease(ctx context.Context, mType entity.MovementType, in MovementInput) (*MutationResult, error) {
	qty := entity.Quantize(in.Quantity)
	if in.ItemID == "" || in.LocationID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if rec.Status == entity.RecordStatusBlocked {
			return domain.ErrRecordBlocked
		}
		// Check-then-act atómico: la fila está bloqueada durante la verificación
		if qty.GreaterThan(rec.AvailableQuantity()) {
			return domain.ErrInsufficientAvailable
		}

		before := rec.QuantityOnHand
		rec.QuantityOnHand = before.Sub(qty)
		rec.RecomputeTotalValue()
		rec.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}

		mov := uc.newConfirmedMovement(rec, mType, qty.Neg(), rec.AverageUnitCost, before, in.SourceDocument, in.Actor, in.OccurredAt)
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		res.Record = rec
		res.Movements = append(res.Movements, mov)
		uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, true, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// RecordTransfer traslada cantidad entre dos ubicaciones de forma atómica:
// o ambas patas se confirman o ninguna se aplica. Los bloqueos de fila se
// adquieren en orden global fijo de clave para evitar deadlocks entre
// traslados concurrentes en sentidos opuestos.
func (uc *UseCase) RecordTransfer(ctx context.Context, in TransferInput) (*MutationResult, error) {
	qty := entity.Quantize(in.Quantity)
	if in.ItemID == "" || in.FromLocationID == "" || in.ToLocationID == "" ||
		in.FromLocationID == in.ToLocationID || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		origin, dest, err := uc.lockTransferPair(recordRepo, in)
		if err != nil {
			return err
		}
		if origin.Status == entity.RecordStatusBlocked || dest.Status == entity.RecordStatusBlocked {
			return domain.ErrRecordBlocked
		}
		// La pata de salida se verifica antes de tocar el destino
		if qty.GreaterThan(origin.AvailableQuantity()) {
			return domain.ErrInsufficientAvailable
		}

		txID := uuid.New().String()
		unitCost := origin.AverageUnitCost

		originBefore := origin.QuantityOnHand
		origin.QuantityOnHand = originBefore.Sub(qty)
		origin.RecomputeTotalValue()
		origin.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(origin); err != nil {
			return err
		}

		destBefore := dest.QuantityOnHand
		dest.AverageUnitCost = inventory.CostCalculator(destBefore, dest.AverageUnitCost, qty, unitCost)
		dest.QuantityOnHand = destBefore.Add(qty)
		dest.RecomputeTotalValue()
		dest.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(dest); err != nil {
			return err
		}

		outMov := uc.newConfirmedMovement(origin, entity.MovementTypeTransfer, qty.Neg(), unitCost, originBefore, in.SourceDocument, in.Actor, in.OccurredAt)
		outMov.TransactionID = txID
		outMov.OriginLocation = in.FromLocationID
		outMov.DestinationLoc = in.ToLocationID
		if err := movRepo.Create(outMov); err != nil {
			return err
		}

		inMov := uc.newConfirmedMovement(dest, entity.MovementTypeTransfer, qty, unitCost, destBefore, in.SourceDocument, in.Actor, in.OccurredAt)
		inMov.TransactionID = txID
		inMov.OriginLocation = in.FromLocationID
		inMov.DestinationLoc = in.ToLocationID
		if err := movRepo.Create(inMov); err != nil {
			return err
		}

		res.Record = origin
		res.Movements = append(res.Movements, outMov, inMov)
		uc.refreshDerived(alertRepo, replRepo, origin, in.OccurredAt, true, res)
		uc.refreshDerived(alertRepo, replRepo, dest, in.OccurredAt, false, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// lockTransferPair bloquea origen y destino en orden ascendente de clave.
// El destino se crea si el artículo nunca fue estocado allí; el origen debe existir.
func (uc *UseCase) lockTransferPair(recordRepo repository.StockRecordRepository, in TransferInput) (origin, dest *entity.StockRecord, err error) {
	firstLoc, secondLoc := in.FromLocationID, in.ToLocationID
	if in.ToLocationID < in.FromLocationID {
		firstLoc, secondLoc = in.ToLocationID, in.FromLocationID
	}
	first, err := recordRepo.GetForUpdate(in.ItemID, firstLoc)
	if err != nil {
		return nil, nil, err
	}
	second, err := recordRepo.GetForUpdate(in.ItemID, secondLoc)
	if err != nil {
		return nil, nil, err
	}

	byLoc := map[string]*entity.StockRecord{firstLoc: first, secondLoc: second}
	origin = byLoc[in.FromLocationID]
	dest = byLoc[in.ToLocationID]
	if origin == nil {
		return nil, nil, domain.ErrNotFound
	}
	if dest == nil {
		dest = entity.NewStockRecord(uuid.New().String(), in.ItemID, in.ToLocationID, in.OccurredAt)
	}
	return origin, dest, nil
}

// RecordAdjustment registra un ajuste por conteo físico. Omite la verificación
// de disponibilidad, pero el balance resultante no puede quedar negativo; si el
// ajuste deja el balance por debajo de lo reservado, la reserva se recorta para
// mantener 0 ≤ reservado ≤ en mano.
func (uc *UseCase) RecordAdjustment(ctx context.Context, in AdjustmentInput) (*MutationResult, error) {
	delta := entity.Quantize(in.Delta)
	if in.ItemID == "" || in.LocationID == "" || delta.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if rec.Status == entity.RecordStatusBlocked {
			return domain.ErrRecordBlocked
		}

		before := rec.QuantityOnHand
		after := before.Add(delta)
		if after.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		rec.QuantityOnHand = after
		if rec.QuantityReserved.GreaterThan(after) {
			rec.QuantityReserved = after
		}
		rec.RecomputeTotalValue()
		rec.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}

		mov := uc.newConfirmedMovement(rec, entity.MovementTypeAdjustment, delta, rec.AverageUnitCost, before, in.Reason, in.Actor, in.OccurredAt)
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		res.Record = rec
		res.Movements = append(res.Movements, mov)
		uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, delta.IsNegative(), res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// Reserve aparta cantidad disponible para un documento consumidor. Falla con
// ErrInsufficientAvailable si la cantidad supera la disponible; la reserva no
// cambia la cantidad en mano (delta de balance cero en el libro).
func (uc *UseCase) Reserve(ctx context.Context, in ReservationInput) (*MutationResult, error) {
	qty := entity.Quantize(in.Quantity)
	if in.ItemID == "" || in.LocationID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}
		if rec.Status == entity.RecordStatusBlocked {
			return domain.ErrRecordBlocked
		}
		if qty.GreaterThan(rec.AvailableQuantity()) {
			return domain.ErrInsufficientAvailable
		}

		rec.QuantityReserved = rec.QuantityReserved.Add(qty)
		rec.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}

		mov := uc.newConfirmedMovement(rec, entity.MovementTypeReservation, qty, rec.AverageUnitCost, rec.QuantityOnHand, in.DocumentRef, in.Actor, in.OccurredAt)
		mov.BalanceAfter = mov.BalanceBefore // la reserva no mueve el balance
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		res.Record = rec
		res.Movements = append(res.Movements, mov)
		uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, false, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// Release libera reserva recortada a min(cantidad, reservado); nunca falla por
// cantidad (clamp). Asienta un movimiento RESERVATION_RELEASE con delta cero.
func (uc *UseCase) Release(ctx context.Context, in ReservationInput) (*MutationResult, error) {
	qty := entity.Quantize(in.Quantity)
	if in.ItemID == "" || in.LocationID == "" || !qty.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}

		released := qty
		if released.GreaterThan(rec.QuantityReserved) {
			released = rec.QuantityReserved
		}
		rec.QuantityReserved = rec.QuantityReserved.Sub(released)
		rec.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}

		mov := uc.newConfirmedMovement(rec, entity.MovementTypeReservationRelease, released.Neg(), rec.AverageUnitCost, rec.QuantityOnHand, in.DocumentRef, in.Actor, in.OccurredAt)
		mov.BalanceAfter = mov.BalanceBefore
		if err := movRepo.Create(mov); err != nil {
			return err
		}

		res.Record = rec
		res.Movements = append(res.Movements, mov)
		uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, false, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// Cancel revierte el efecto neto de un movimiento confirmado sobre su registro.
// Ajustes restauran el balance previo exacto; los demás tipos aplican la
// cantidad inversa. Cancelar un movimiento ya cancelado es un error reportado
// (ErrAlreadyCancelled), nunca un no-op silencioso: el caller debe saber que la
// reversión no ocurrió dos veces.
func (uc *UseCase) Cancel(ctx context.Context, movementID, reason, actor string, at time.Time) (*MutationResult, error) {
	if movementID == "" {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		mov, err := movRepo.GetByID(movementID)
		if err != nil {
			return err
		}
		if mov == nil {
			return domain.ErrNotFound
		}
		if mov.IsCancelled() {
			return domain.ErrAlreadyCancelled
		}

		rec, err := recordRepo.GetForUpdate(mov.ItemID, mov.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}

		if err := uc.reverse(rec, mov); err != nil {
			return err
		}
		rec.RecomputeTotalValue()
		rec.UpdatedAt = at
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}
		if err := movRepo.MarkCancelled(mov.ID, reason, at); err != nil {
			return err
		}
		mov.Status = entity.MovementStatusCancelled
		mov.CancelReason = reason
		mov.CancelledAt = &at

		res.Record = rec
		res.Movements = append(res.Movements, mov)
		uc.refreshDerived(alertRepo, replRepo, rec, at, true, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// reverse aplica la inversa del movimiento sobre el registro bloqueado.
func (uc *UseCase) reverse(rec *entity.StockRecord, mov *entity.MovementEntry) error {
	switch mov.Type {
	case entity.MovementTypeAdjustment:
		// Restaurar el balance previo exacto del ajuste
		rec.QuantityOnHand = mov.BalanceBefore
	case entity.MovementTypeReservation:
		rec.QuantityReserved = rec.QuantityReserved.Sub(mov.Quantity)
		if rec.QuantityReserved.LessThan(decimal.Zero) {
			rec.QuantityReserved = decimal.Zero
		}
	case entity.MovementTypeReservationRelease:
		// Quantity de la liberación es negativa: restarla re-aparta lo liberado
		rec.QuantityReserved = rec.QuantityReserved.Sub(mov.Quantity)
	default:
		after := rec.QuantityOnHand.Sub(mov.Quantity)
		if after.LessThan(decimal.Zero) {
			// La cantidad revertida ya fue consumida aguas abajo
			return domain.ErrInsufficientAvailable
		}
		rec.QuantityOnHand = after
	}
	if rec.QuantityReserved.GreaterThan(rec.QuantityOnHand) {
		rec.QuantityReserved = rec.QuantityOnHand
	}
	return nil
}

// UpdateThresholds actualiza mínimo, máximo, punto de reorden y datos de lote,
// y reevalúa alertas: bajar el máximo puede abrir EXCESS_STOCK sin que cambie
// ninguna cantidad.
func (uc *UseCase) UpdateThresholds(ctx context.Context, in ThresholdsInput) (*MutationResult, error) {
	if in.ItemID == "" || in.LocationID == "" || in.Minimum.LessThan(decimal.Zero) ||
		in.ReorderPoint.LessThan(decimal.Zero) || in.LeadTimeDays < 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.Maximum != nil && in.Maximum.LessThan(in.Minimum) {
		return nil, domain.ErrInvalidInput
	}

	res := &MutationResult{}
	err := uc.txRunner.Run(ctx, func(
		recordRepo repository.StockRecordRepository,
		movRepo repository.MovementRepository,
		alertRepo repository.AlertRepository,
		replRepo repository.ReplenishmentRepository,
	) error {
		rec, err := recordRepo.GetForUpdate(in.ItemID, in.LocationID)
		if err != nil {
			return err
		}
		if rec == nil {
			return domain.ErrNotFound
		}

		rec.QuantityMinimum = entity.Quantize(in.Minimum)
		if in.Maximum != nil {
			max := entity.Quantize(*in.Maximum)
			rec.QuantityMaximum = &max
		} else {
			rec.QuantityMaximum = nil
		}
		rec.ReorderPoint = entity.Quantize(in.ReorderPoint)
		rec.LeadTimeDays = in.LeadTimeDays
		if in.LotNumber != "" {
			rec.LotNumber = in.LotNumber
		}
		rec.ExpirationDate = in.ExpirationDate
		rec.UpdatedAt = in.OccurredAt
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}

		res.Record = rec
		uc.refreshDerived(alertRepo, replRepo, rec, in.OccurredAt, false, res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.DispatchNotifications(ctx, res)
	return res, nil
}

// SetStatus cambia el estado del registro (activo, bloqueado, en revisión).
// Los registros nunca se eliminan físicamente: se bloquean.
func (uc *UseCase) SetStatus(ctx context.Context, itemID, locationID string, status entity.RecordStatus, at time.Time) (*entity.StockRecord, error) {
	switch status {
	case entity.RecordStatusActive, entity.RecordStatusBlocked, entity.RecordStatusUnderReview:
	default:
		return nil, domain.ErrInvalidInput
	}

	var out *entity.StockRecord
	err := uc.txRunner.Run(ctx, func(
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
		rec.Status = status
		rec.UpdatedAt = at
		if err := recordRepo.Upsert(rec); err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetRecord consulta de lectura del registro (fuera de transacción).
func (uc *UseCase) GetRecord(ctx context.Context, itemID, locationID string) (*entity.StockRecord, error) {
	rec, err := uc.recordRepo.Get(itemID, locationID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

// OpenAlerts devuelve las alertas abiertas del registro.
func (uc *UseCase) OpenAlerts(ctx context.Context, itemID, locationID string) ([]*entity.Alert, error) {
	rec, err := uc.GetRecord(ctx, itemID, locationID)
	if err != nil {
		return nil, err
	}
	return uc.alertRepo.ListOpenByRecord(rec.ID)
}

// ListMovements historial del libro por registro o por artículo.
func (uc *UseCase) ListMovements(ctx context.Context, itemID, locationID string, from, to *time.Time, limit, offset int) ([]*entity.MovementEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if locationID != "" {
		rec, err := uc.GetRecord(ctx, itemID, locationID)
		if err != nil {
			return nil, err
		}
		return uc.movRepo.ListByRecord(rec.ID, from, to, limit, offset)
	}
	return uc.movRepo.ListByItem(itemID, from, to, limit, offset)
}

// newConfirmedMovement arma un asiento confirmado del libro. Para un movimiento
// que afecta balance: BalanceAfter = BalanceBefore + Quantity = en mano actual.
func (uc *UseCase) newConfirmedMovement(
	rec *entity.StockRecord,
	mType entity.MovementType,
	quantity, unitCost, balanceBefore decimal.Decimal,
	sourceDocument, actor string,
	at time.Time,
) *entity.MovementEntry {
	return &entity.MovementEntry{
		ID:             uuid.New().String(),
		TransactionID:  uuid.New().String(),
		StockRecordID:  rec.ID,
		ItemID:         rec.ItemID,
		LocationID:     rec.LocationID,
		Type:           mType,
		Quantity:       quantity,
		UnitCost:       unitCost,
		BalanceBefore:  balanceBefore,
		BalanceAfter:   rec.QuantityOnHand,
		SourceDocument: sourceDocument,
		Actor:          actor,
		Status:         entity.MovementStatusConfirmed,
		OccurredAt:     at,
		CreatedAt:      at,
	}
}

// refreshDerived corre el motor de alertas y, para decrementos, la evaluación
// de reposición, dentro de la misma transacción que la mutación. Sus fallos se
// registran en el log pero no hacen fallar la mutación (estado derivado
// best-effort, se reintenta en la próxima mutación).
func (uc *UseCase) refreshDerived(
	alertRepo repository.AlertRepository,
	replRepo repository.ReplenishmentRepository,
	rec *entity.StockRecord,
	now time.Time,
	decreased bool,
	res *MutationResult,
) {
	open, err := alertRepo.ListOpenByRecord(rec.ID)
	if err != nil {
		uc.log.Warn().Err(err).Str("record_id", rec.ID).Msg("no se pudieron leer alertas abiertas")
		return
	}
	ev := uc.engine.Evaluate(rec, open, now)
	for _, a := range ev.ToOpen {
		if err := alertRepo.Create(a); err != nil {
			uc.log.Warn().Err(err).Str("condition", string(a.Condition)).Msg("no se pudo crear alerta")
			continue
		}
		res.AlertsOpened = append(res.AlertsOpened, a)
	}
	for _, a := range ev.ToResolve {
		if err := alertRepo.Resolve(a.ID, "condición superada", now); err != nil {
			uc.log.Warn().Err(err).Str("alert_id", a.ID).Msg("no se pudo resolver alerta")
			continue
		}
		a.Status = entity.AlertStatusResolved
		a.ResolvedReason = "condición superada"
		a.ResolvedAt = &now
		res.AlertsResolved = append(res.AlertsResolved, a)
	}

	if !decreased {
		return
	}
	// Sugerencia de reposición: solo si hace falta y no hay una solicitud abierta
	existing, err := replRepo.GetOpenByRecord(rec.ID)
	if err != nil {
		uc.log.Warn().Err(err).Str("record_id", rec.ID).Msg("no se pudo consultar reposición abierta")
		return
	}
	if existing != nil {
		return
	}
	req := inventory.SuggestReplenishment(rec, now)
	if req == nil {
		return
	}
	if err := replRepo.Create(req); err != nil {
		uc.log.Warn().Err(err).Str("record_id", rec.ID).Msg("no se pudo crear sugerencia de reposición")
		return
	}
	res.ReplenishmentSuggested = req
}

// DispatchNotifications despacha al notificador externo las alertas abiertas de
// severidad alta o crítica, ya fuera de la transacción y sin el bloqueo de fila.
// El fallo del notificador solo se registra: no revierte el estado de la alerta.
func (uc *UseCase) DispatchNotifications(ctx context.Context, res *MutationResult) {
	if uc.notifier == nil {
		return
	}
	for _, a := range res.AlertsOpened {
		if !a.NotifiesExternally() {
			continue
		}
		if err := uc.notifier.Notify(ctx, a); err != nil {
			uc.log.Warn().Err(err).
				Str("alert_id", a.ID).
				Str("condition", string(a.Condition)).
				Msg("fallo al notificar alerta")
		}
	}
}
