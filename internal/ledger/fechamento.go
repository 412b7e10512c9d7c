package ledger

// fechamento.go — session-close reconciliation.
// The backend owns the authoritative close computation; the terminal mirrors
// the returned result. CalcularFechamento exists so tests (and the fake
// backend they build) share the exact same arithmetic.

import (
	"time"

	"github.com/google/uuid"

	"caixapos/internal/money"
)

// StatusFechamento classifies the counted-vs-expected difference.
type StatusFechamento string

const (
	StatusIntegra StatusFechamento = "integra" // difference exactly zero
	StatusSobra   StatusFechamento = "sobra"   // cash surplus
	StatusQuebra  StatusFechamento = "quebra"  // cash shortage
)

// Fechamento is the reconciliation result produced at session close.
type Fechamento struct {
	SessaoID            uuid.UUID
	SaldoInicial        money.Centavos
	TotalVendas         money.Centavos
	TotalVendasDinheiro money.Centavos
	TotalSuprimentos    money.Centavos
	TotalSangrias       money.Centavos
	TotalPagamentos     money.Centavos
	ContagemFisica      money.Centavos
	SaldoEsperado       money.Centavos
	Diferenca           money.Centavos
	Vendas              []Transacao // full sale detail for audit
	FechadaEm           time.Time
}

// Status is purely informational — it never drives control flow.
func (f Fechamento) Status() StatusFechamento {
	switch {
	case f.Diferenca == 0:
		return StatusIntegra
	case f.Diferenca > 0:
		return StatusSobra
	default:
		return StatusQuebra
	}
}

// CalcularFechamento reconciles a physically counted amount against the
// session's expected cash balance:
//
//	esperado  = saldo inicial + vendas em dinheiro + suprimentos − sangrias − pagamentos
//	diferenca = contagem física − esperado
func CalcularFechamento(s *Sessao, contagem money.Centavos) Fechamento {
	f := Fechamento{
		SessaoID:       s.ID,
		SaldoInicial:   s.SaldoInicial,
		ContagemFisica: contagem,
		FechadaEm:      time.Now().UTC(),
	}

	for _, tr := range s.Transacoes {
		switch tr.Tipo {
		case TipoVenda:
			if tr.Venda == nil {
				continue
			}
			f.TotalVendas += tr.Venda.Total
			f.TotalVendasDinheiro += tr.Venda.Dinheiro()
			f.Vendas = append(f.Vendas, tr)
		case TipoSuprimento:
			f.TotalSuprimentos += tr.Valor
		case TipoSangria:
			f.TotalSangrias += tr.Valor
		case TipoPagamento:
			f.TotalPagamentos += tr.Valor
		}
	}

	f.SaldoEsperado = s.SaldoInicial + f.TotalVendasDinheiro +
		f.TotalSuprimentos - f.TotalSangrias - f.TotalPagamentos
	f.Diferenca = contagem - f.SaldoEsperado
	return f
}
