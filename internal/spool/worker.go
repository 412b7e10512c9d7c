package spool

// worker.go — sync workers that drain the offline sale spool.
// Each worker blocks on BRPOP — zero CPU when the spool is empty.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"caixapos/internal/api"
)

// Sender is the slice of the backend client the workers need.
type Sender interface {
	FinalizarVenda(ctx context.Context, req api.FinalizarVendaRequest) (string, error)
}

// StartSyncWorkers launches numWorkers goroutines draining the spool until
// ctx is cancelled.
func StartSyncWorkers(ctx context.Context, rdb *redis.Client, sender Sender, numWorkers int) {
	s := New(rdb)
	for i := 0; i < numWorkers; i++ {
		go s.runWorker(ctx, sender, i)
	}
	log.Info().Int("workers", numWorkers).Msg("spool: sincronização de vendas iniciada")
}

func (s *Spool) runWorker(ctx context.Context, sender Sender, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("spool: worker encerrando")
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx.
			result, err := s.rdb.BRPop(ctx, 5*time.Second, FilaVendas).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			s.processar(ctx, sender, result[1])
		}
	}
}

func (s *Spool) processar(ctx context.Context, sender Sender, raw string) {
	var entry VendaPendente
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		log.Error().Err(err).Msg("spool: entrada ilegível descartada")
		return
	}

	vendaID, err := sender.FinalizarVenda(ctx, entry.Venda)
	if err == nil {
		log.Info().
			Str("venda_id", vendaID).
			Str("sessao", entry.Venda.SessaoID).
			Msg("spool: venda sincronizada")
		return
	}

	entry.Tentativas++
	if entry.Tentativas >= maxTentativas {
		s.enviarParaDLQ(ctx, entry, err.Error())
		return
	}

	entry.UltimoErro = err.Error()
	data, merr := json.Marshal(entry)
	if merr != nil {
		log.Error().Err(merr).Msg("spool: remarshalling da venda pendente")
		return
	}
	if err := s.rdb.LPush(ctx, FilaVendas, data).Err(); err != nil {
		log.Error().Err(err).Msg("spool: reenfileirar venda")
		return
	}
	log.Warn().
		Int("tentativas", entry.Tentativas).
		Err(err).
		Msg("spool: sincronização falhou, venda reenfileirada")
}
