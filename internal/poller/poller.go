// Package poller runs a fixed-interval refresh loop for mirrored backend
// state. Before each tick the previous in-flight request is cancelled, so a
// slow response can never overlap the next one and apply out of order.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Func performs one refresh. It must honor ctx cancellation.
type Func func(ctx context.Context) error

// Poller ticks at a fixed interval with no backoff; cancellation of the outer
// context is the only teardown.
type Poller struct {
	nome     string
	interval time.Duration
	fn       Func
}

func New(nome string, interval time.Duration, fn Func) *Poller {
	return &Poller{nome: nome, interval: interval, fn: fn}
}

// Run blocks until ctx is cancelled. The first refresh fires immediately.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var (
		mu         sync.Mutex
		cancelPrev context.CancelFunc
	)

	tick := func() {
		mu.Lock()
		if cancelPrev != nil {
			cancelPrev()
		}
		tickCtx, cancel := context.WithCancel(ctx)
		cancelPrev = cancel
		mu.Unlock()

		go func() {
			defer cancel()
			if err := p.fn(tickCtx); err != nil && tickCtx.Err() == nil {
				log.Debug().Str("poller", p.nome).Err(err).Msg("falha ao atualizar")
			}
		}()
	}

	tick()
	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if cancelPrev != nil {
				cancelPrev()
			}
			mu.Unlock()
			log.Info().Str("poller", p.nome).Msg("encerrado")
			return
		case <-ticker.C:
			tick()
		}
	}
}
