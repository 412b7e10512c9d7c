package ledger

import "caixapos/internal/money"

// Totais are the four display aggregates for an open session.
// Invariant: DinheiroEmCaixa == SaldoInicial + vendas em dinheiro
// + suprimentos − sangrias − pagamentos.
type Totais struct {
	TotalVendas         money.Centavos
	TotalVendasDinheiro money.Centavos
	TotalSuprimentos    money.Centavos
	TotalSaidas         money.Centavos // sangrias + pagamentos
	DinheiroEmCaixa     money.Centavos
}

// Agregar computes the session aggregates over an unordered transaction list.
// Pure computation: nothing is mutated, unknown transaction types are skipped.
func Agregar(saldoInicial money.Centavos, transacoes []Transacao) Totais {
	t := Totais{DinheiroEmCaixa: saldoInicial}

	for _, tr := range transacoes {
		switch tr.Tipo {
		case TipoVenda:
			if tr.Venda == nil {
				continue
			}
			dinheiro := tr.Venda.Dinheiro()
			t.TotalVendas += tr.Venda.Total
			t.TotalVendasDinheiro += dinheiro
			t.DinheiroEmCaixa += dinheiro
		case TipoSuprimento:
			t.TotalSuprimentos += tr.Valor
			t.DinheiroEmCaixa += tr.Valor
		case TipoSangria, TipoPagamento:
			t.TotalSaidas += tr.Valor
			t.DinheiroEmCaixa -= tr.Valor
		}
	}
	return t
}
