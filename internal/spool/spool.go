// Package spool is the terminal's offline sale queue. A sale finalized while
// the backend is unreachable is pushed into a Redis list and drained later by
// the sync workers. Only sales are spooled: cash mutations (open, close,
// movements) always fail loudly and are re-submitted by the operator.
package spool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"caixapos/internal/api"
)

const (
	FilaVendas = "spool:vendas"
	DLQKey     = "dlq:" + FilaVendas

	maxTentativas = 5
)

// VendaPendente wraps a queued sale with retry metadata.
type VendaPendente struct {
	Venda      api.FinalizarVendaRequest `json:"venda"`
	Tentativas int                       `json:"tentativas"`
	CriadaEm   string                    `json:"criada_em"` // ISO 8601
	UltimoErro string                    `json:"ultimo_erro,omitempty"`
}

// Spool enqueues and inspects the pending-sale list.
type Spool struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Spool { return &Spool{rdb: rdb} }

// Enfileirar pushes a sale for later synchronization.
func (s *Spool) Enfileirar(ctx context.Context, venda api.FinalizarVendaRequest) error {
	entry := VendaPendente{
		Venda:    venda,
		CriadaEm: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.LPush(ctx, FilaVendas, data).Err()
}

// Pendentes returns the number of sales waiting for sync.
func (s *Spool) Pendentes(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, FilaVendas).Result()
}

// Descartadas returns the dead-letter count for monitoring.
func (s *Spool) Descartadas(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, DLQKey).Result()
}

func (s *Spool) enviarParaDLQ(ctx context.Context, entry VendaPendente, motivo string) {
	entry.UltimoErro = motivo
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Msg("spool: marshal entrada da DLQ")
		return
	}
	if err := s.rdb.LPush(ctx, DLQKey, data).Err(); err != nil {
		log.Error().Err(err).Msg("spool: mover venda para DLQ")
		return
	}
	log.Warn().
		Str("motivo", motivo).
		Int("tentativas", entry.Tentativas).
		Msg("spool: venda movida para a dead letter queue")
}
