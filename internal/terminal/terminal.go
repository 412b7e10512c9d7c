// Package terminal orchestrates the cashier flows: it validates against the
// local store, submits the mutation to the backend, and mirrors the accepted
// result back into the store. The backend stays authoritative for every
// number; the store only exists so the screen has consistent state between
// polls.
package terminal

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"caixapos/internal/api"
	"caixapos/internal/apierror"
	"caixapos/internal/caixa"
	"caixapos/internal/checkout"
	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

// Backend is the slice of the API client the terminal uses.
type Backend interface {
	AbrirCaixa(ctx context.Context, req api.AbrirCaixaRequest) (*ledger.Sessao, error)
	SessaoAberta(ctx context.Context, operadorID string) (*ledger.Sessao, error)
	FecharCaixa(ctx context.Context, req api.FecharCaixaRequest) (*ledger.Fechamento, error)
	RegistrarMovimento(ctx context.Context, tipo ledger.Tipo, req api.MovimentoRequest) error
	FinalizarVenda(ctx context.Context, req api.FinalizarVendaRequest) (string, error)
}

// Enfileirador queues sales for later sync when the backend is unreachable.
type Enfileirador interface {
	Enfileirar(ctx context.Context, venda api.FinalizarVendaRequest) error
}

var ErrSemSessao = caixa.ErrSemSessaoAberta

// Terminal drives one operator's cash session.
type Terminal struct {
	backend    Backend
	store      *caixa.Store
	spool      Enfileirador // nil disables offline queueing
	operadorID string
}

func New(backend Backend, store *caixa.Store, spool Enfileirador, operadorID string) *Terminal {
	return &Terminal{backend: backend, store: store, spool: spool, operadorID: operadorID}
}

// Estado returns the current snapshot for rendering.
func (t *Terminal) Estado() caixa.Estado { return t.store.Snapshot() }

// AbrirCaixa opens a session with the given initial balance.
func (t *Terminal) AbrirCaixa(ctx context.Context, saldoInicial money.Centavos) (*ledger.Sessao, error) {
	if saldoInicial < 0 {
		return nil, caixa.ErrSaldoInicialNegativo
	}
	sessao, err := t.backend.AbrirCaixa(ctx, api.AbrirCaixaRequest{
		OperadorID:   t.operadorID,
		SaldoInicial: int64(saldoInicial),
	})
	if err != nil {
		return nil, err
	}
	if err := t.store.Abrir(*sessao); err != nil {
		return nil, err
	}
	return sessao, nil
}

// RestaurarSessao mirrors an already-open backend session into the store
// (terminal restart, shift takeover). Returns nil when the operator has none.
func (t *Terminal) RestaurarSessao(ctx context.Context) (*ledger.Sessao, error) {
	sessao, err := t.backend.SessaoAberta(ctx, t.operadorID)
	if err != nil || sessao == nil {
		return nil, err
	}
	if err := t.store.Abrir(*sessao); err != nil {
		return nil, err
	}
	return sessao, nil
}

// Atualizar is the poll refresh: fetch the open session and let the store
// decide whether the response still applies. A backend that no longer reports
// an open session expires the local mirror instead of leaving it stale.
func (t *Terminal) Atualizar(ctx context.Context) error {
	sessao, err := t.backend.SessaoAberta(ctx, t.operadorID)
	if err != nil {
		return err
	}
	if sessao == nil {
		t.store.Expirar()
		return nil
	}
	t.store.Atualizar(*sessao)
	return nil
}

// RegistrarMovimento validates and submits a suprimento, sangria or
// pagamento. Validation failures never reach the wire.
func (t *Terminal) RegistrarMovimento(ctx context.Context, tipo ledger.Tipo, valor money.Centavos, categoria, descricao string) error {
	if err := t.store.ValidarMovimento(tipo, valor); err != nil {
		return err
	}
	estado := t.store.Snapshot()
	if estado.Sessao == nil {
		return ErrSemSessao
	}

	err := t.backend.RegistrarMovimento(ctx, tipo, api.MovimentoRequest{
		Valor:      int64(valor),
		Categoria:  categoria,
		Descricao:  descricao,
		OperadorID: t.operadorID,
		SessaoID:   estado.Sessao.ID.String(),
	})
	if err != nil {
		return err
	}

	operador, _ := uuid.Parse(t.operadorID)
	return t.store.Registrar(ledger.Transacao{
		ID:         uuid.New(), // placeholder until the next poll brings the backend id
		Tipo:       tipo,
		OperadorID: operador,
		Valor:      valor,
		Categoria:  categoria,
		Descricao:  descricao,
		Timestamp:  time.Now().UTC(),
	})
}

// RegistrarVenda submits a finalized sale. When the backend is unreachable
// and a spool is configured, the sale is queued for sync instead of lost;
// domain rejections (4xx) are returned as-is and never queued.
// enfileirada reports whether the sale went to the spool.
func (t *Terminal) RegistrarVenda(ctx context.Context, v checkout.VendaFinalizada) (vendaID string, enfileirada bool, err error) {
	estado := t.store.Snapshot()
	if estado.Sessao == nil {
		return "", false, ErrSemSessao
	}

	req := api.NovaFinalizarVendaRequest(t.operadorID, estado.Sessao.ID.String(), v)

	vendaID, err = t.backend.FinalizarVenda(ctx, req)
	if err != nil {
		var apiErr *apierror.APIError
		if errors.As(err, &apiErr) || t.spool == nil {
			return "", false, err
		}
		if qerr := t.spool.Enfileirar(ctx, req); qerr != nil {
			return "", false, errors.Join(err, qerr)
		}
		enfileirada = true
	}

	operador, _ := uuid.Parse(t.operadorID)
	venda := v.Venda
	regErr := t.store.Registrar(ledger.Transacao{
		ID:         uuid.New(),
		Tipo:       ledger.TipoVenda,
		OperadorID: operador,
		Valor:      venda.Total,
		Timestamp:  time.Now().UTC(),
		Venda:      &venda,
	})
	if regErr != nil {
		return vendaID, enfileirada, regErr
	}
	return vendaID, enfileirada, nil
}

// FecharCaixa submits the physical count. The returned reconciliation is held
// by the store until ConfirmarFechamento — viewing the report and clearing
// the session are deliberately separate steps.
func (t *Terminal) FecharCaixa(ctx context.Context, contagemTexto string) (*ledger.Fechamento, error) {
	estado := t.store.Snapshot()
	if estado.Sessao == nil {
		return nil, ErrSemSessao
	}

	contagem := money.ParseOrZero(contagemTexto)
	f, err := t.backend.FecharCaixa(ctx, api.FecharCaixaRequest{
		SessaoID:       estado.Sessao.ID.String(),
		ContagemFisica: int64(contagem),
	})
	if err != nil {
		return nil, err
	}
	if err := t.store.IniciarFechamento(*f); err != nil {
		return nil, err
	}
	return f, nil
}

// ConfirmarFechamento dismisses the summary and clears the local session.
func (t *Terminal) ConfirmarFechamento() (ledger.Fechamento, error) {
	return t.store.ConfirmarFechamento()
}
