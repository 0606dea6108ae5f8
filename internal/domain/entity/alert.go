package entity

import "time"

// Condiciones de alerta derivadas del estado de un StockRecord.
type AlertCondition string

const (
	AlertZeroStock    AlertCondition = "ZERO_STOCK"
	AlertLowStock     AlertCondition = "LOW_STOCK"
	AlertExcessStock  AlertCondition = "EXCESS_STOCK"
	AlertExpired      AlertCondition = "EXPIRED"
	AlertExpiringSoon AlertCondition = "EXPIRING_SOON"
)

// Severidades de alerta.
type AlertSeverity string

const (
	SeverityMedium   AlertSeverity = "MEDIUM"
	SeverityHigh     AlertSeverity = "HIGH"
	SeverityCritical AlertSeverity = "CRITICAL"
)

// Estados de alerta. Las alertas se resuelven, nunca se eliminan.
type AlertStatus string

const (
	AlertStatusOpen     AlertStatus = "OPEN"
	AlertStatusResolved AlertStatus = "RESOLVED"
)

// Alert entidad derivada: a lo sumo una alerta abierta por
// (StockRecord, condición). La crea y resuelve el motor de alertas.
type Alert struct {
	ID            string
	StockRecordID string
	ItemID        string
	LocationID    string
	Condition     AlertCondition
	Severity      AlertSeverity
	Message       string
	Status        AlertStatus
	ResolvedReason string
	ResolvedAt    *time.Time
	CreatedAt     time.Time
}

// NotifiesExternally indica si la severidad amerita despacho al notificador externo.
func (a *Alert) NotifiesExternally() bool {
	return a.Severity == SeverityHigh || a.Severity == SeverityCritical
}
