package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// RunSubscriber consome o canal Redis Pub/Sub de atualizações de
// partida e repassa para o hub. Bloqueia até o contexto encerrar.
func RunSubscriber(ctx context.Context, log *zap.Logger, rdb *redis.Client, channel string, hub *Hub) {
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev events.MatchUpdate
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("bad match update payload", zap.Error(err))
				continue
			}
			hub.Broadcast(ev)
		}
	}
}
