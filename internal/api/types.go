package api

// types.go — wire DTOs of the backend REST API. Field names follow the
// backend contract (English, camelCase); every monetary value on the wire is
// an integer in cents. Conversion to the domain types happens here and
// nowhere else.

import (
	"time"

	"github.com/google/uuid"

	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCaixaRequest struct {
	OperadorID   string `json:"operatorId"     validate:"required,uuid"`
	SaldoInicial int64  `json:"initialBalance" validate:"min=0"`
}

type FecharCaixaRequest struct {
	SessaoID       string `json:"sessionId"     validate:"required,uuid"`
	ContagemFisica int64  `json:"physicalCount" validate:"min=0"`
}

// MovimentoRequest covers suprimento, sangria and pagamento — the movement
// kind is the URL path, not a body field.
type MovimentoRequest struct {
	Valor      int64  `json:"amount"        validate:"required,gt=0"`
	Categoria  string `json:"category"      validate:"required"`
	Descricao  string `json:"description"   validate:"required,min=3"`
	OperadorID string `json:"operatorId"    validate:"required,uuid"`
	SessaoID   string `json:"cashSessionId" validate:"required,uuid"`
}

type ItemVendaRequest struct {
	ProdutoID  string `json:"productId"  validate:"required"`
	Descricao  string `json:"description"`
	Quantidade int    `json:"quantity"   validate:"required,min=1"`
	TotalLinha int64  `json:"line_total" validate:"min=0"`
}

type PagamentoRequest struct {
	Metodo string `json:"method" validate:"required,oneof=dinheiro debito credito pix"`
	Valor  int64  `json:"amount" validate:"required,gt=0"`
}

type VendaMetadata struct {
	TrocoCentavos int64 `json:"changeCents"`
}

type FinalizarVendaRequest struct {
	OperadorID    string             `json:"operatorId"    validate:"required,uuid"`
	SessaoID      string             `json:"cashSessionId" validate:"required,uuid"`
	Itens         []ItemVendaRequest `json:"items"         validate:"required,min=1,dive"`
	Pagamentos    []PagamentoRequest `json:"payments"      validate:"required,min=1,dive"`
	Subtotal      int64              `json:"subtotal"      validate:"min=0"`
	DescontoTotal int64              `json:"discountTotal" validate:"min=0"`
	Total         int64              `json:"total"         validate:"gt=0"`
	ClienteID     *string            `json:"clientId"      validate:"omitempty,uuid"`
	Metadata      *VendaMetadata     `json:"metadata,omitempty"`
}

type loginRequest struct {
	Usuario string `json:"username" validate:"required"`
	Senha   string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type sessaoWire struct {
	ID           string            `json:"id"`
	OperadorID   string            `json:"operatorId"`
	SaldoInicial int64             `json:"initialBalance"`
	AbertaEm     time.Time         `json:"openedAt"`
	FechadaEm    *time.Time        `json:"closedAt"`
	Transacoes   []ledger.Registro `json:"transactions"`
}

type sessaoEnvelope struct {
	Sessao sessaoWire `json:"session"`
}

func (w sessaoWire) toSessao() (*ledger.Sessao, error) {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return nil, err
	}
	operador, err := uuid.Parse(w.OperadorID)
	if err != nil {
		return nil, err
	}
	return &ledger.Sessao{
		ID:           id,
		OperadorID:   operador,
		SaldoInicial: money.Centavos(w.SaldoInicial),
		AbertaEm:     w.AbertaEm,
		FechadaEm:    w.FechadaEm,
		Transacoes:   ledger.Normalizar(w.Transacoes),
	}, nil
}

type fechamentoWire struct {
	SessaoID            string            `json:"sessionId"`
	SaldoInicial        int64             `json:"initialBalance"`
	ContagemFisica      int64             `json:"physicalCount"`
	TotalVendas         int64             `json:"totalVendas"`
	TotalVendasDinheiro int64             `json:"totalVendasCash"`
	TotalSuprimentos    int64             `json:"suprimentoTotal"`
	TotalSangrias       int64             `json:"sangriaTotal"`
	TotalPagamentos     int64             `json:"pagamentoTotal"`
	SaldoEsperado       int64             `json:"expectedBalance"`
	Diferenca           int64             `json:"difference"`
	Vendas              []ledger.Registro `json:"sales"`
	FechadaEm           time.Time         `json:"closedAt"`
}

type fechamentoEnvelope struct {
	Fechamento fechamentoWire `json:"closeResult"`
}

func (w fechamentoWire) toFechamento() *ledger.Fechamento {
	id, _ := uuid.Parse(w.SessaoID)
	return &ledger.Fechamento{
		SessaoID:            id,
		SaldoInicial:        money.Centavos(w.SaldoInicial),
		ContagemFisica:      money.Centavos(w.ContagemFisica),
		TotalVendas:         money.Centavos(w.TotalVendas),
		TotalVendasDinheiro: money.Centavos(w.TotalVendasDinheiro),
		TotalSuprimentos:    money.Centavos(w.TotalSuprimentos),
		TotalSangrias:       money.Centavos(w.TotalSangrias),
		TotalPagamentos:     money.Centavos(w.TotalPagamentos),
		SaldoEsperado:       money.Centavos(w.SaldoEsperado),
		Diferenca:           money.Centavos(w.Diferenca),
		Vendas:              ledger.Normalizar(w.Vendas),
		FechadaEm:           w.FechadaEm,
	}
}

type transacoesEnvelope struct {
	Transacoes []ledger.Registro `json:"transactions"`
}

type vendasEnvelope struct {
	Vendas []ledger.Registro `json:"sales"`
}

type vendaFinalizadaEnvelope struct {
	VendaID string `json:"saleId"`
}

// SessaoResumo is one entry of the closed-session history listing.
type SessaoResumo struct {
	ID           string     `json:"id"`
	OperadorID   string     `json:"operatorId"`
	SaldoInicial int64      `json:"initialBalance"`
	SaldoFinal   int64      `json:"finalBalance"`
	Diferenca    int64      `json:"difference"`
	AbertaEm     time.Time  `json:"openedAt"`
	FechadaEm    *time.Time `json:"closedAt"`
}

type historicoEnvelope struct {
	Sessoes []SessaoResumo `json:"sessions"`
	Total   int64          `json:"total"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}
