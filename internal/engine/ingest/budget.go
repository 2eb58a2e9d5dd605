package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-engine/internal/shared/metrics"
)

// CallBudget controla a cota diária de chamadas ao fornecedor com um
// contador no Redis. A chave vira por dia (UTC) e expira sozinha.
//
// Fail-open: se o Redis estiver indisponível o consumo é permitido,
// porque bloquear a ingestão inteira por falha de contador custa mais
// que estourar a cota num dia ruim.
type CallBudget struct {
	R       *redis.Client
	Max     int
	Log     *zap.Logger
	NowFunc func() time.Time
}

func (b *CallBudget) now() time.Time {
	if b.NowFunc != nil {
		return b.NowFunc()
	}
	return time.Now().UTC()
}

func (b *CallBudget) key() string {
	return fmt.Sprintf("provider:calls:%s", b.now().Format("2006-01-02"))
}

// Consume registra uma chamada e informa se ela cabe na cota do dia.
func (b *CallBudget) Consume(ctx context.Context) (bool, error) {
	if b.Max <= 0 {
		return true, nil
	}
	key := b.key()
	n, err := b.R.Incr(ctx, key).Result()
	if err != nil {
		b.Log.Warn("call budget unavailable, allowing call", zap.Error(err))
		return true, nil
	}
	if n == 1 {
		// 48h cobre fuso e relógio atrasado sem acumular chaves.
		b.R.Expire(ctx, key, 48*time.Hour)
	}
	if n > int64(b.Max) {
		metrics.ProviderBlocked.Inc()
		return false, nil
	}
	return true, nil
}

// Used devolve quantas chamadas já foram feitas hoje.
func (b *CallBudget) Used(ctx context.Context) (int, error) {
	n, err := b.R.Get(ctx, b.key()).Int()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
