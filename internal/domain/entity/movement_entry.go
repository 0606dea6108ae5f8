package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro.
type MovementType string

const (
	MovementTypeEntry              MovementType = "ENTRY"
	MovementTypeExit               MovementType = "EXIT"
	MovementTypeTransfer           MovementType = "TRANSFER"
	MovementTypeAdjustment         MovementType = "ADJUSTMENT"
	MovementTypeLoss               MovementType = "LOSS"
	MovementTypeReturn             MovementType = "RETURN"
	MovementTypeReservation        MovementType = "RESERVATION"
	MovementTypeReservationRelease MovementType = "RESERVATION_RELEASE"
)

// Estados de un movimiento. Los helpers de creación confirman de inmediato;
// la única mutación legal posterior es la transición a Cancelled.
type MovementStatus string

const (
	MovementStatusPending   MovementStatus = "PENDING"
	MovementStatusConfirmed MovementStatus = "CONFIRMED"
	MovementStatusCancelled MovementStatus = "CANCELLED"
)

// MovementEntry registro inmutable del libro: captura un cambio de cantidad
// sobre un StockRecord. Para un movimiento confirmado que no sea ajuste:
// BalanceAfter = BalanceBefore + Quantity, y BalanceAfter debe coincidir con
// el QuantityOnHand del registro al momento de confirmar.
type MovementEntry struct {
	ID                string
	TransactionID     string
	StockRecordID     string
	ItemID            string
	LocationID        string
	Type              MovementType
	Quantity          decimal.Decimal // con signo: positivo suma en mano, negativo resta
	UnitCost          decimal.Decimal
	BalanceBefore     decimal.Decimal
	BalanceAfter      decimal.Decimal
	SourceDocument    string
	OriginLocation    string // solo traslados
	DestinationLoc    string // solo traslados
	Actor             string
	Status            MovementStatus
	CancelReason      string
	CancelledAt       *time.Time
	OccurredAt        time.Time
	CreatedAt         time.Time
}

// IsCancelled indica si el movimiento ya fue revertido.
func (m *MovementEntry) IsCancelled() bool {
	return m.Status == MovementStatusCancelled
}

// IsBalanceAffecting indica si el tipo de movimiento altera la cantidad en mano.
// Las reservas y liberaciones registran delta de balance cero.
func (m *MovementEntry) IsBalanceAffecting() bool {
	return m.Type != MovementTypeReservation && m.Type != MovementTypeReservationRelease
}
