package ledger

// ingestao.go — normalization of backend wire records into tagged Transacoes.
// The backend mixes two historical record shapes in the same list: sale
// records (identified by an items array, possibly with the legacy single
// paymentMethod field) and movement records carrying a type field. All shape
// sniffing lives here; past this point every record carries an explicit Tipo.

import (
	"time"

	"github.com/google/uuid"

	"caixapos/internal/money"
)

// Registro is the raw wire shape of one transaction as returned by the
// backend. Monetary fields are integer cents; optional numerics are pointers
// so that absent fields default to zero during normalization.
type Registro struct {
	ID              string              `json:"id"`
	Tipo            string              `json:"type,omitempty"`
	OperadorID      string              `json:"operatorId,omitempty"`
	Valor           *int64              `json:"amount,omitempty"`
	Categoria       string              `json:"category,omitempty"`
	Descricao       string              `json:"description,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
	Itens           []RegistroItem      `json:"items,omitempty"`
	Pagamentos      []RegistroPagamento `json:"payments,omitempty"`
	Subtotal        *int64              `json:"subtotal,omitempty"`
	DescontoTotal   *int64              `json:"discountTotal,omitempty"`
	Total           *int64              `json:"total,omitempty"`
	MetodoPagamento string              `json:"paymentMethod,omitempty"` // legacy single-method sales
}

type RegistroItem struct {
	ProdutoID  string `json:"productId"`
	Descricao  string `json:"description"`
	Quantidade int    `json:"quantity"`
	TotalLinha int64  `json:"line_total"`
}

type RegistroPagamento struct {
	Metodo string `json:"method"`
	Valor  int64  `json:"amount"`
}

// Normalizar converts wire records into tagged transactions. Records that are
// neither a sale (items present) nor a known movement type are dropped.
func Normalizar(registros []Registro) []Transacao {
	out := make([]Transacao, 0, len(registros))
	for _, r := range registros {
		if t, ok := normalizarUm(r); ok {
			out = append(out, t)
		}
	}
	return out
}

func normalizarUm(r Registro) (Transacao, bool) {
	id, _ := uuid.Parse(r.ID)
	operador, _ := uuid.Parse(r.OperadorID)

	base := Transacao{
		ID:         id,
		OperadorID: operador,
		Categoria:  r.Categoria,
		Descricao:  r.Descricao,
		Timestamp:  r.Timestamp,
	}

	// Presence of an items array marks a sale regardless of the type field.
	if r.Itens != nil {
		v := &Venda{
			Subtotal:      centavosOuZero(r.Subtotal),
			DescontoTotal: centavosOuZero(r.DescontoTotal),
			MetodoLegado:  r.MetodoPagamento,
		}
		for _, it := range r.Itens {
			v.Itens = append(v.Itens, ItemVenda{
				ProdutoID:  it.ProdutoID,
				Descricao:  it.Descricao,
				Quantidade: it.Quantidade,
				TotalLinha: money.Centavos(it.TotalLinha),
			})
		}
		for _, p := range r.Pagamentos {
			v.Pagamentos = append(v.Pagamentos, PagamentoVenda{
				Metodo: p.Metodo,
				Valor:  money.Centavos(p.Valor),
			})
		}
		// Sale total: the total field when present, otherwise the sum of
		// line totals.
		if r.Total != nil {
			v.Total = money.Centavos(*r.Total)
		} else {
			for _, it := range v.Itens {
				v.Total += it.TotalLinha
			}
		}

		base.Tipo = TipoVenda
		base.Valor = v.Total
		base.Venda = v
		return base, true
	}

	switch Tipo(r.Tipo) {
	case TipoSuprimento, TipoSangria, TipoPagamento:
		base.Tipo = Tipo(r.Tipo)
		base.Valor = centavosOuZero(r.Valor)
		return base, true
	}
	return Transacao{}, false
}

func centavosOuZero(v *int64) money.Centavos {
	if v == nil {
		return 0
	}
	return money.Centavos(*v)
}
