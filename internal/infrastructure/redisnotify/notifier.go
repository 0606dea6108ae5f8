package redisnotify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/stock-ledger/internal/application/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/pkg/config"
)

var _ ledger.Notifier = (*Notifier)(nil)

// Notifier publica alertas de severidad alta/crítica en un canal Redis que
// consume el módulo externo de mensajería (correo, chat). Se invoca después
// del commit; un fallo aquí no revierte el estado de la alerta.
type Notifier struct {
	client  *redis.Client
	channel string
}

// NewNotifier construye el notificador y verifica la conexión.
func NewNotifier(ctx context.Context, cfg config.RedisConfig) (*Notifier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Notifier{client: client, channel: cfg.Channel}, nil
}

// alertMessage payload publicado en el canal.
type alertMessage struct {
	AlertID    string `json:"alert_id"`
	ItemID     string `json:"item_id"`
	LocationID string `json:"location_id"`
	Condition  string `json:"condition"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	CreatedAt  string `json:"created_at"`
}

// Notify publica la alerta en el canal configurado.
func (n *Notifier) Notify(ctx context.Context, a *entity.Alert) error {
	payload, err := json.Marshal(alertMessage{
		AlertID:    a.ID,
		ItemID:     a.ItemID,
		LocationID: a.LocationID,
		Condition:  string(a.Condition),
		Severity:   string(a.Severity),
		Message:    a.Message,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("serializar alerta: %w", err)
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		return fmt.Errorf("publicar alerta: %w", err)
	}
	return nil
}

// Close cierra la conexión con Redis.
func (n *Notifier) Close() error {
	return n.client.Close()
}
