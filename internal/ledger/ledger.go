// Package ledger holds the cash-session domain model: the session itself and
// its ordered sequence of transactions, plus the pure aggregation and
// reconciliation arithmetic. Everything here operates on integer centavos
// (see internal/money) and has no side effects — persistence belongs to the
// backend, the terminal only mirrors it.
package ledger

import (
	"time"

	"github.com/google/uuid"

	"caixapos/internal/money"
)

// Tipo discriminates the transaction union. It is assigned exactly once, at
// ingestion (see Normalizar) — aggregation code never inspects wire shapes.
type Tipo string

const (
	TipoVenda      Tipo = "venda"
	TipoSuprimento Tipo = "suprimento" // cash injection into the till
	TipoSangria    Tipo = "sangria"    // cash withdrawal for safekeeping
	TipoPagamento  Tipo = "pagamento"  // expense settled from till cash
)

// MetodoDinheiro is the payment-method value that affects till cash.
const MetodoDinheiro = "dinheiro"

// ItemVenda is one line of a sale.
type ItemVenda struct {
	ProdutoID  string
	Descricao  string
	Quantidade int
	TotalLinha money.Centavos
}

// PrecoUnitario derives the per-unit price for display. The ledger never
// re-multiplies this back: TotalLinha is the authoritative line amount.
func (i ItemVenda) PrecoUnitario() money.Centavos {
	if i.Quantidade <= 0 {
		return 0
	}
	return i.TotalLinha / money.Centavos(i.Quantidade)
}

// PagamentoVenda is one payment applied to a sale.
type PagamentoVenda struct {
	Metodo string
	Valor  money.Centavos
}

// Venda is the sale payload of a TipoVenda transaction.
type Venda struct {
	Itens         []ItemVenda
	Pagamentos    []PagamentoVenda
	Subtotal      money.Centavos
	DescontoTotal money.Centavos
	Total         money.Centavos
	// MetodoLegado is set for old records that carry a single paymentMethod
	// string instead of a payments list. When it equals MetodoDinheiro the
	// whole Total counts as cash.
	MetodoLegado string
}

// Dinheiro returns the portion of the sale settled in till cash.
func (v Venda) Dinheiro() money.Centavos {
	if len(v.Pagamentos) == 0 {
		if v.MetodoLegado == MetodoDinheiro {
			return v.Total
		}
		return 0
	}
	var total money.Centavos
	for _, p := range v.Pagamentos {
		if p.Metodo == MetodoDinheiro {
			total += p.Valor
		}
	}
	return total
}

// Transacao is one immutable event in the session ledger.
// Valor holds the movement amount; for vendas it mirrors Venda.Total and
// Venda is non-nil.
type Transacao struct {
	ID         uuid.UUID
	Tipo       Tipo
	OperadorID uuid.UUID
	Valor      money.Centavos
	Categoria  string
	Descricao  string
	Timestamp  time.Time
	Venda      *Venda
}

// Sessao mirrors the backend's open cash session. SaldoInicial is immutable
// after open; FechadaEm is nil while the session is open.
type Sessao struct {
	ID           uuid.UUID
	OperadorID   uuid.UUID
	SaldoInicial money.Centavos
	AbertaEm     time.Time
	FechadaEm    *time.Time
	Transacoes   []Transacao
}

// Aberta reports whether the session is still open.
func (s *Sessao) Aberta() bool { return s != nil && s.FechadaEm == nil }
