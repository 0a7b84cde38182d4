package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MessageDeduper descarta entregas repetidas del mismo mensaje entrante
// (los webhooks son at-least-once; sin esto un duplicado avanzaria el paso
// dos veces).
type MessageDeduper interface {
	FirstSeen(ctx context.Context, messageID string) bool
}

type redisSetter interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

type redisMessageDeduper struct {
	client redisSetter
	ttl    time.Duration
	prefix string
}

func NewRedisMessageDeduper(client *redis.Client, ttl time.Duration) MessageDeduper {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisMessageDeduper{
		client: client,
		ttl:    ttl,
		prefix: "sms:seen:",
	}
}

// FirstSeen registra el id con SET NX; devuelve false solo en duplicados
// confirmados. Ante redis caido falla abierto: mejor procesar de mas que
// perder un mensaje.
func (d *redisMessageDeduper) FirstSeen(ctx context.Context, messageID string) bool {
	if d == nil || d.client == nil {
		return true
	}
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	ok, err := d.client.SetNX(ctx, d.prefix+messageID, 1, d.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}
