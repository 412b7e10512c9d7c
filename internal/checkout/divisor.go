// Package checkout implements the payment side of finalizing a sale: the
// multi-method payment splitter and the cash-tender change calculation.
package checkout

import (
	"errors"

	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

var (
	ErrTotalInvalido        = errors.New("total da venda deve ser maior que zero")
	ErrValorInvalido        = errors.New("valor do pagamento deve ser maior que zero")
	ErrValorExcedeRestante  = errors.New("valor do pagamento excede o restante")
	ErrPagamentoIncompleto  = errors.New("soma dos pagamentos difere do total")
	ErrRecebidoInsuficiente = errors.New("valor recebido menor que o total")
	ErrIndiceInvalido       = errors.New("pagamento inexistente")
)

// Divisor accumulates payment entries against a fixed sale total.
// Finalization is possible only when the entries sum to the total exactly —
// integer comparison, no tolerance.
type Divisor struct {
	total      money.Centavos
	pagamentos []ledger.PagamentoVenda
}

func NewDivisor(total money.Centavos) (*Divisor, error) {
	if total <= 0 {
		return nil, ErrTotalInvalido
	}
	return &Divisor{total: total}, nil
}

func (d *Divisor) Total() money.Centavos { return d.total }

// Restante is the amount still unpaid.
func (d *Divisor) Restante() money.Centavos {
	r := d.total
	for _, p := range d.pagamentos {
		r -= p.Valor
	}
	return r
}

// Adicionar validates and appends one payment entry: the amount must be
// positive and must not exceed the remaining balance, so the running sum can
// never pass the total.
func (d *Divisor) Adicionar(metodo string, valor money.Centavos) error {
	if valor <= 0 {
		return ErrValorInvalido
	}
	if valor > d.Restante() {
		return ErrValorExcedeRestante
	}
	d.pagamentos = append(d.pagamentos, ledger.PagamentoVenda{Metodo: metodo, Valor: valor})
	return nil
}

// Remover drops a previously added entry (operator corrected a mistake).
func (d *Divisor) Remover(i int) error {
	if i < 0 || i >= len(d.pagamentos) {
		return ErrIndiceInvalido
	}
	d.pagamentos = append(d.pagamentos[:i], d.pagamentos[i+1:]...)
	return nil
}

// PodeFinalizar reports whether the payments cover the total exactly.
func (d *Divisor) PodeFinalizar() bool { return d.Restante() == 0 }

// Pagamentos returns a copy of the accumulated entries.
func (d *Divisor) Pagamentos() []ledger.PagamentoVenda {
	return append([]ledger.PagamentoVenda(nil), d.pagamentos...)
}
