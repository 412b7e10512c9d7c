package checkout

import (
	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

// Carrinho is the sale being assembled at the terminal.
type Carrinho struct {
	Itens         []ledger.ItemVenda
	DescontoTotal money.Centavos
	ClienteID     string
}

func (c *Carrinho) Subtotal() money.Centavos {
	var s money.Centavos
	for _, it := range c.Itens {
		s += it.TotalLinha
	}
	return s
}

func (c *Carrinho) Total() money.Centavos {
	return c.Subtotal() - c.DescontoTotal
}

// VendaFinalizada is the checkout output handed to the API layer.
// TrocoCentavos is display/metadata only — the ledger records the sale total,
// never the change.
type VendaFinalizada struct {
	Venda         ledger.Venda
	ClienteID     string
	TrocoCentavos money.Centavos
}

// Finalizar closes the cart against a splitter. The splitter must cover the
// cart total exactly.
func (c *Carrinho) Finalizar(d *Divisor) (VendaFinalizada, error) {
	if d.Total() != c.Total() || !d.PodeFinalizar() {
		return VendaFinalizada{}, ErrPagamentoIncompleto
	}
	return VendaFinalizada{
		Venda: ledger.Venda{
			Itens:         append([]ledger.ItemVenda(nil), c.Itens...),
			Pagamentos:    d.Pagamentos(),
			Subtotal:      c.Subtotal(),
			DescontoTotal: c.DescontoTotal,
			Total:         c.Total(),
		},
		ClienteID: c.ClienteID,
	}, nil
}

// FinalizarDinheiro is the single-method cash shortcut: the operator enters
// the amount received, the change is computed for display and annotated as
// metadata, and the sale is paid with a single cash entry equal to the total.
func (c *Carrinho) FinalizarDinheiro(recebido money.Centavos) (VendaFinalizada, error) {
	total := c.Total()
	if total <= 0 {
		return VendaFinalizada{}, ErrTotalInvalido
	}
	if recebido < total {
		return VendaFinalizada{}, ErrRecebidoInsuficiente
	}
	return VendaFinalizada{
		Venda: ledger.Venda{
			Itens:         append([]ledger.ItemVenda(nil), c.Itens...),
			Pagamentos:    []ledger.PagamentoVenda{{Metodo: ledger.MetodoDinheiro, Valor: total}},
			Subtotal:      c.Subtotal(),
			DescontoTotal: c.DescontoTotal,
			Total:         total,
		},
		ClienteID:     c.ClienteID,
		TrocoCentavos: recebido - total,
	}, nil
}
