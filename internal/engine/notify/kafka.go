// Package notify publica eventos do motor para assinantes externos:
// tópicos Kafka (integrações) e um canal Redis Pub/Sub (broadcast
// WebSocket). A entrega é melhor-esforço; falha de publicação nunca
// derruba aposta nem liquidação.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/pkg/contracts/events"
)

// KafkaPublisher encapsula os writers dos tópicos do motor.
type KafkaPublisher struct {
	Log          *zap.Logger
	MatchUpdates *kafka.Writer
	BetSettled   *kafka.Writer
}

// PublishMatchUpdate envia o evento chaveado pelo id da partida para
// manter ordem por partição.
func (p *KafkaPublisher) PublishMatchUpdate(ctx context.Context, e events.MatchUpdate) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.MatchUpdates.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.MatchID),
		Value: b,
		Time:  time.Now(),
	})
}

// PublishBetSettled envia o evento chaveado pelo id da aposta.
func (p *KafkaPublisher) PublishBetSettled(ctx context.Context, e events.BetSettled) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.BetSettled.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.BetID),
		Value: b,
		Time:  time.Now(),
	})
}

// Close libera os writers.
func (p *KafkaPublisher) Close() error {
	if err := p.MatchUpdates.Close(); err != nil {
		return err
	}
	return p.BetSettled.Close()
}
