package terminal

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caixapos/internal/api"
	"caixapos/internal/apierror"
	"caixapos/internal/caixa"
	"caixapos/internal/checkout"
	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

// backendMemoria implements Backend in memory, mirroring the backend's rules
// closely enough for the orchestration paths under test.
type backendMemoria struct {
	sessao *ledger.Sessao

	falhaTransporte bool // simulate backend unreachable
	erroDominio     *apierror.APIError

	vendasRecebidas []api.FinalizarVendaRequest
}

func (b *backendMemoria) indisponivel() error {
	if b.falhaTransporte {
		return errors.New("api: backend inacessível: connection refused")
	}
	if b.erroDominio != nil {
		return b.erroDominio
	}
	return nil
}

func (b *backendMemoria) AbrirCaixa(_ context.Context, req api.AbrirCaixaRequest) (*ledger.Sessao, error) {
	if err := b.indisponivel(); err != nil {
		return nil, err
	}
	operador, _ := uuid.Parse(req.OperadorID)
	b.sessao = &ledger.Sessao{
		ID:           uuid.New(),
		OperadorID:   operador,
		SaldoInicial: money.Centavos(req.SaldoInicial),
		AbertaEm:     time.Now().UTC(),
	}
	s := *b.sessao
	return &s, nil
}

func (b *backendMemoria) SessaoAberta(_ context.Context, operadorID string) (*ledger.Sessao, error) {
	if err := b.indisponivel(); err != nil {
		return nil, err
	}
	if b.sessao == nil || b.sessao.OperadorID.String() != operadorID {
		return nil, nil
	}
	s := *b.sessao
	s.Transacoes = append([]ledger.Transacao(nil), b.sessao.Transacoes...)
	return &s, nil
}

func (b *backendMemoria) FecharCaixa(_ context.Context, req api.FecharCaixaRequest) (*ledger.Fechamento, error) {
	if err := b.indisponivel(); err != nil {
		return nil, err
	}
	if b.sessao == nil {
		return nil, apierror.New(http.StatusNotFound, "sessão não encontrada")
	}
	f := ledger.CalcularFechamento(b.sessao, money.Centavos(req.ContagemFisica))
	b.sessao = nil
	return &f, nil
}

func (b *backendMemoria) RegistrarMovimento(_ context.Context, tipo ledger.Tipo, req api.MovimentoRequest) error {
	if err := b.indisponivel(); err != nil {
		return err
	}
	b.sessao.Transacoes = append(b.sessao.Transacoes, ledger.Transacao{
		ID:        uuid.New(),
		Tipo:      tipo,
		Valor:     money.Centavos(req.Valor),
		Categoria: req.Categoria,
		Descricao: req.Descricao,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (b *backendMemoria) FinalizarVenda(_ context.Context, req api.FinalizarVendaRequest) (string, error) {
	if err := b.indisponivel(); err != nil {
		return "", err
	}
	b.vendasRecebidas = append(b.vendasRecebidas, req)
	return uuid.NewString(), nil
}

type spoolMemoria struct {
	fila []api.FinalizarVendaRequest
	erro error
}

func (s *spoolMemoria) Enfileirar(_ context.Context, v api.FinalizarVendaRequest) error {
	if s.erro != nil {
		return s.erro
	}
	s.fila = append(s.fila, v)
	return nil
}

func setup(t *testing.T) (*Terminal, *backendMemoria, *spoolMemoria) {
	t.Helper()
	backend := &backendMemoria{}
	spool := &spoolMemoria{}
	term := New(backend, caixa.NewStore(0), spool, uuid.NewString())
	return term, backend, spool
}

func carrinhoDe(total money.Centavos) checkout.Carrinho {
	return checkout.Carrinho{Itens: []ledger.ItemVenda{
		{ProdutoID: "prod-1", Descricao: "item", Quantidade: 1, TotalLinha: total},
	}}
}

func TestAbrirCaixaEspelhaNoEstado(t *testing.T) {
	term, _, _ := setup(t)

	sessao, err := term.AbrirCaixa(context.Background(), 10000)
	require.NoError(t, err)

	estado := term.Estado()
	require.NotNil(t, estado.Sessao)
	assert.Equal(t, sessao.ID, estado.Sessao.ID)
	assert.Equal(t, money.Centavos(10000), estado.Totais.DinheiroEmCaixa)
}

func TestAbrirCaixaSaldoNegativoNaoChegaAoBackend(t *testing.T) {
	term, backend, _ := setup(t)

	_, err := term.AbrirCaixa(context.Background(), -1)
	assert.ErrorIs(t, err, caixa.ErrSaldoInicialNegativo)
	assert.Nil(t, backend.sessao)
}

func TestRestaurarSessaoAposReinicio(t *testing.T) {
	term, backend, _ := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 5000)
	require.NoError(t, err)

	// Outro processo: mesmo operador, store vazio.
	term2 := New(backend, caixa.NewStore(0), nil, backend.sessao.OperadorID.String())
	sessao, err := term2.RestaurarSessao(ctx)
	require.NoError(t, err)
	require.NotNil(t, sessao)
	assert.Equal(t, backend.sessao.ID, sessao.ID)
}

func TestRestaurarSemSessaoRetornaNil(t *testing.T) {
	term, _, _ := setup(t)
	sessao, err := term.RestaurarSessao(context.Background())
	require.NoError(t, err)
	assert.Nil(t, sessao)
}

func TestMovimentoValidadoAntesDoEnvio(t *testing.T) {
	term, backend, _ := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 2000)
	require.NoError(t, err)

	// Sangria maior que o dinheiro em caixa nunca chega ao backend.
	err = term.RegistrarMovimento(ctx, ledger.TipoSangria, 3000, "deposito", "depósito banco")
	assert.ErrorIs(t, err, caixa.ErrSangriaExcedeCaixa)
	assert.Empty(t, backend.sessao.Transacoes)

	require.NoError(t, term.RegistrarMovimento(ctx, ledger.TipoSangria, 1500, "deposito", "depósito banco"))
	assert.Len(t, backend.sessao.Transacoes, 1)
	assert.Equal(t, money.Centavos(500), term.Estado().Totais.DinheiroEmCaixa)
}

func TestVendaOnlineNaoEnfileira(t *testing.T) {
	term, backend, spool := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)

	carrinho := carrinhoDe(2500)
	finalizada, err := carrinho.FinalizarDinheiro(2500)
	require.NoError(t, err)

	vendaID, enfileirada, err := term.RegistrarVenda(ctx, finalizada)
	require.NoError(t, err)
	assert.NotEmpty(t, vendaID)
	assert.False(t, enfileirada)
	assert.Empty(t, spool.fila)
	assert.Len(t, backend.vendasRecebidas, 1)

	// A venda em dinheiro entra no espelho local imediatamente.
	assert.Equal(t, money.Centavos(12500), term.Estado().Totais.DinheiroEmCaixa)
}

func TestVendaOfflineVaiParaOSpool(t *testing.T) {
	term, backend, spool := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)
	backend.falhaTransporte = true

	carrinho := carrinhoDe(2500)
	finalizada, err := carrinho.FinalizarDinheiro(2500)
	require.NoError(t, err)

	vendaID, enfileirada, err := term.RegistrarVenda(ctx, finalizada)
	require.NoError(t, err)
	assert.Empty(t, vendaID)
	assert.True(t, enfileirada)
	require.Len(t, spool.fila, 1)
	assert.Equal(t, int64(2500), spool.fila[0].Total)

	// Mesmo enfileirada, a venda conta no caixa local.
	assert.Equal(t, money.Centavos(12500), term.Estado().Totais.DinheiroEmCaixa)
}

func TestVendaRejeitadaPeloBackendNaoEnfileira(t *testing.T) {
	term, backend, spool := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)
	backend.erroDominio = apierror.New(http.StatusUnprocessableEntity, "estoque insuficiente")

	carrinho := carrinhoDe(2500)
	finalizada, err := carrinho.FinalizarDinheiro(2500)
	require.NoError(t, err)

	_, enfileirada, err := term.RegistrarVenda(ctx, finalizada)
	require.Error(t, err)
	assert.True(t, apierror.IsStatus(err, http.StatusUnprocessableEntity))
	assert.False(t, enfileirada)
	assert.Empty(t, spool.fila)
}

func TestVendaOfflineSemSpoolPropagaErro(t *testing.T) {
	backend := &backendMemoria{}
	term := New(backend, caixa.NewStore(0), nil, uuid.NewString())
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)
	backend.falhaTransporte = true

	carrinho := carrinhoDe(2500)
	finalizada, err := carrinho.FinalizarDinheiro(2500)
	require.NoError(t, err)

	_, enfileirada, err := term.RegistrarVenda(ctx, finalizada)
	require.Error(t, err)
	assert.False(t, enfileirada)
}

func TestFechamentoEmDuasEtapas(t *testing.T) {
	term, _, _ := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)
	require.NoError(t, term.RegistrarMovimento(ctx, ledger.TipoSuprimento, 1000, "troco", "reforço de troco"))

	f, err := term.FecharCaixa(ctx, "110,00")
	require.NoError(t, err)
	assert.Equal(t, money.Centavos(11000), f.SaldoEsperado)
	assert.Equal(t, ledger.StatusIntegra, f.Status())

	// Entre o resumo e a confirmação nada novo entra no caixa.
	err = term.RegistrarMovimento(ctx, ledger.TipoSuprimento, 100, "troco", "reforço de troco")
	assert.ErrorIs(t, err, caixa.ErrFechamentoPendente)

	confirmado, err := term.ConfirmarFechamento()
	require.NoError(t, err)
	assert.Equal(t, f.SaldoEsperado, confirmado.SaldoEsperado)
	assert.Nil(t, term.Estado().Sessao)
}

func TestFecharSemSessao(t *testing.T) {
	term, _, _ := setup(t)
	_, err := term.FecharCaixa(context.Background(), "0")
	assert.ErrorIs(t, err, ErrSemSessao)
}

func TestAtualizarEspelhaRespostaDoBackend(t *testing.T) {
	term, backend, _ := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)

	// O backend ganhou uma venda registrada por outro canal.
	backend.sessao.Transacoes = append(backend.sessao.Transacoes, ledger.Transacao{
		ID:   uuid.New(),
		Tipo: ledger.TipoVenda,
		Venda: &ledger.Venda{
			Total:      4000,
			Pagamentos: []ledger.PagamentoVenda{{Metodo: ledger.MetodoDinheiro, Valor: 4000}},
		},
		Valor:     4000,
		Timestamp: time.Now().UTC(),
	})

	require.NoError(t, term.Atualizar(ctx))
	assert.Equal(t, money.Centavos(14000), term.Estado().Totais.DinheiroEmCaixa)
}

func TestAtualizarExpiraSessaoFechadaEmOutroLugar(t *testing.T) {
	term, backend, _ := setup(t)
	ctx := context.Background()

	_, err := term.AbrirCaixa(ctx, 10000)
	require.NoError(t, err)

	// Sessão encerrada por outro canal (ex.: console administrativo).
	backend.sessao = nil

	require.NoError(t, term.Atualizar(ctx))
	assert.Nil(t, term.Estado().Sessao)
}
