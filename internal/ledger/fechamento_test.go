package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"caixapos/internal/money"
)

func sessaoComTransacoes(saldoInicial money.Centavos, transacoes ...Transacao) *Sessao {
	return &Sessao{
		ID:           uuid.New(),
		OperadorID:   uuid.New(),
		SaldoInicial: saldoInicial,
		Transacoes:   transacoes,
	}
}

func TestCalcularFechamentoIntegra(t *testing.T) {
	s := sessaoComTransacoes(10000,
		vendaDinheiro(2500),
		movimento(TipoSuprimento, 1000),
		movimento(TipoSangria, 500),
	)
	// esperado = 10000 + 2500 + 1000 − 500 = 13000
	f := CalcularFechamento(s, 13000)

	assert.Equal(t, money.Centavos(13000), f.SaldoEsperado)
	assert.Equal(t, money.Centavos(0), f.Diferenca)
	assert.Equal(t, StatusIntegra, f.Status())
}

func TestCalcularFechamentoSobra(t *testing.T) {
	s := sessaoComTransacoes(10000, vendaDinheiro(2500))
	f := CalcularFechamento(s, 13000)

	assert.Equal(t, money.Centavos(12500), f.SaldoEsperado)
	assert.Equal(t, money.Centavos(500), f.Diferenca)
	assert.Equal(t, StatusSobra, f.Status())
}

func TestCalcularFechamentoQuebra(t *testing.T) {
	s := sessaoComTransacoes(10000, vendaDinheiro(2500))
	f := CalcularFechamento(s, 12000)

	assert.Equal(t, money.Centavos(-500), f.Diferenca)
	assert.Equal(t, StatusQuebra, f.Status())
}

func TestCalcularFechamentoPagamentosESangrias(t *testing.T) {
	s := sessaoComTransacoes(5000,
		vendaDinheiro(10000),
		movimento(TipoSuprimento, 2000),
		movimento(TipoSangria, 4000),
		movimento(TipoPagamento, 1000),
	)
	f := CalcularFechamento(s, 12000)

	assert.Equal(t, money.Centavos(10000), f.TotalVendasDinheiro)
	assert.Equal(t, money.Centavos(2000), f.TotalSuprimentos)
	assert.Equal(t, money.Centavos(4000), f.TotalSangrias)
	assert.Equal(t, money.Centavos(1000), f.TotalPagamentos)
	assert.Equal(t, money.Centavos(12000), f.SaldoEsperado)
	assert.Equal(t, StatusIntegra, f.Status())
}

func TestCalcularFechamentoGuardaVendasParaAuditoria(t *testing.T) {
	v1, v2 := vendaDinheiro(100), vendaDinheiro(200)
	s := sessaoComTransacoes(0, v1, movimento(TipoSuprimento, 50), v2)

	f := CalcularFechamento(s, 0)
	assert.Len(t, f.Vendas, 2)
	assert.Equal(t, money.Centavos(300), f.TotalVendas)
}
