package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caixapos/internal/ledger"
)

func fechamentoDeTeste() *ledger.Fechamento {
	venda := ledger.Transacao{
		ID:        uuid.New(),
		Tipo:      ledger.TipoVenda,
		Valor:     2500,
		Timestamp: time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC),
		Venda: &ledger.Venda{
			Total:      2500,
			Pagamentos: []ledger.PagamentoVenda{{Metodo: ledger.MetodoDinheiro, Valor: 2500}},
		},
	}
	return &ledger.Fechamento{
		SessaoID:            uuid.New(),
		SaldoInicial:        10000,
		TotalVendas:         2500,
		TotalVendasDinheiro: 2500,
		TotalSuprimentos:    1000,
		TotalSangrias:       5000,
		ContagemFisica:      8500,
		SaldoEsperado:       8500,
		Diferenca:           0,
		Vendas:              []ledger.Transacao{venda},
		FechadaEm:           time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC),
	}
}

func TestGerarFechamentoPDF(t *testing.T) {
	f := fechamentoDeTeste()
	dir := t.TempDir()

	path, err := GerarFechamentoPDF(f, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fechamento_"+f.SessaoID.String()+".pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestGerarFechamentoPDFCriaDiretorio(t *testing.T) {
	f := fechamentoDeTeste()
	dir := filepath.Join(t.TempDir(), "fechamentos", "2026")

	path, err := GerarFechamentoPDF(f, dir)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStatusLabelsCobremTodosOsStatus(t *testing.T) {
	for _, s := range []ledger.StatusFechamento{
		ledger.StatusIntegra, ledger.StatusSobra, ledger.StatusQuebra,
	} {
		assert.NotEmpty(t, statusLabels[s], "status %s", s)
	}
}
