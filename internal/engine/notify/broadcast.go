package notify

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// RedisBroadcaster publica atualizações de partida no canal Pub/Sub
// consumido pelo hub WebSocket.
type RedisBroadcaster struct {
	R       *redis.Client
	Channel string
}

func (b *RedisBroadcaster) BroadcastMatchUpdate(ctx context.Context, e events.MatchUpdate) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.R.Publish(ctx, b.Channel, payload).Err()
}
