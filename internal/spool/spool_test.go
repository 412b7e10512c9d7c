//go:build integration

package spool

// spool_test.go
// Integration tests for the offline sale spool against a real Redis via
// testcontainers. Run with: go test -tags integration ./internal/spool/... -v

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"caixapos/internal/api"
	"caixapos/internal/infra"
)

func setupRedis(t *testing.T) *Spool {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(rdURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb)
}

func vendaDeTeste(total int64) api.FinalizarVendaRequest {
	return api.FinalizarVendaRequest{
		OperadorID: uuid.NewString(),
		SessaoID:   uuid.NewString(),
		Itens: []api.ItemVendaRequest{
			{ProdutoID: "prod-1", Quantidade: 1, TotalLinha: total},
		},
		Pagamentos: []api.PagamentoRequest{
			{Metodo: "dinheiro", Valor: total},
		},
		Subtotal: total,
		Total:    total,
	}
}

// senderControlado fails the first n attempts, then succeeds.
type senderControlado struct {
	mu       sync.Mutex
	falhas   int
	enviadas []api.FinalizarVendaRequest
}

func (s *senderControlado) FinalizarVenda(_ context.Context, req api.FinalizarVendaRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.falhas > 0 {
		s.falhas--
		return "", errors.New("backend inacessível")
	}
	s.enviadas = append(s.enviadas, req)
	return uuid.NewString(), nil
}

func (s *senderControlado) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.enviadas)
}

func TestEnfileirarEPendentes(t *testing.T) {
	sp := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, sp.Enfileirar(ctx, vendaDeTeste(2500)))
	require.NoError(t, sp.Enfileirar(ctx, vendaDeTeste(990)))

	n, err := sp.Pendentes(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestWorkerDrenaFila(t *testing.T) {
	sp := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for i := 0; i < 3; i++ {
		require.NoError(t, sp.Enfileirar(ctx, vendaDeTeste(1000*int64(i+1))))
	}

	sender := &senderControlado{}
	go sp.runWorker(ctx, sender, 0)

	require.Eventually(t, func() bool { return sender.total() == 3 },
		10*time.Second, 100*time.Millisecond)

	n, err := sp.Pendentes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFalhaReenfileiraComTentativas(t *testing.T) {
	sp := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, sp.Enfileirar(ctx, vendaDeTeste(2500)))

	sender := &senderControlado{falhas: 2}
	go sp.runWorker(ctx, sender, 0)

	// Duas falhas reenfileiram, a terceira tentativa sincroniza.
	require.Eventually(t, func() bool { return sender.total() == 1 },
		10*time.Second, 100*time.Millisecond)

	dlq, err := sp.Descartadas(ctx)
	require.NoError(t, err)
	assert.Zero(t, dlq)
}

func TestEsgotarTentativasMoveParaDLQ(t *testing.T) {
	sp := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, sp.Enfileirar(ctx, vendaDeTeste(2500)))

	sender := &senderControlado{falhas: maxTentativas + 1}
	go sp.runWorker(ctx, sender, 0)

	require.Eventually(t, func() bool {
		dlq, err := sp.Descartadas(ctx)
		return err == nil && dlq == 1
	}, 15*time.Second, 100*time.Millisecond)

	n, err := sp.Pendentes(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, sender.total())
}

func TestWorkerEncerraComContexto(t *testing.T) {
	sp := setupRedis(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sp.runWorker(ctx, &senderControlado{}, 0)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("worker não encerrou após cancelamento do contexto")
	}
}
