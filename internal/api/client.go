// Package api is the HTTP/JSON client for the POS backend. The backend owns
// all persistent state; this client sends complete, independent mutation
// requests (open, close, movement, sale) and decodes what comes back into the
// domain types. Mutations are never retried automatically — a failure is
// surfaced to the operator, who re-submits.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"caixapos/internal/apierror"
	"caixapos/internal/checkout"
	"caixapos/internal/ledger"
)

var validate = validator.New()

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the POS backend.
type Client struct {
	baseURL string
	http    *http.Client
	cb      *CircuitBreaker
	tokens  TokenSource
}

// NewClient builds a client for the given base URL. tokens may be nil for
// unauthenticated use (login itself).
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		cb:      NewCircuitBreaker(DefaultCBConfig()),
		tokens:  tokens,
	}
}

// CBState exposes the breaker state for status displays.
func (c *Client) CBState() CBState { return c.cb.State() }

// ─── Auth ────────────────────────────────────────────────────────────────────

// Login exchanges credentials for a token pair. The tokens are opaque to the
// terminal; it stores and presents them as issued.
func (c *Client) Login(ctx context.Context, usuario, senha string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil,
		loginRequest{Usuario: usuario, Senha: senha}, &pair, false)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh trades a refresh token for a fresh pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh", nil,
		refreshRequest{RefreshToken: refreshToken}, &pair, false)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// ─── Sessão de caixa ─────────────────────────────────────────────────────────

// AbrirCaixa opens a cash session with a non-negative initial balance.
func (c *Client) AbrirCaixa(ctx context.Context, req AbrirCaixaRequest) (*ledger.Sessao, error) {
	var env sessaoEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/cash/open", nil, req, &env, true); err != nil {
		return nil, err
	}
	return env.Sessao.toSessao()
}

// SessaoAberta fetches the operator's currently open session.
// Returns (nil, nil) when the backend reports none.
func (c *Client) SessaoAberta(ctx context.Context, operadorID string) (*ledger.Sessao, error) {
	q := url.Values{"operatorId": {operadorID}}
	var env sessaoEnvelope
	err := c.do(ctx, http.MethodGet, "/api/cash/open", q, nil, &env, true)
	if apierror.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return env.Sessao.toSessao()
}

// FecharCaixa submits the physical count and returns the backend's
// authoritative reconciliation.
func (c *Client) FecharCaixa(ctx context.Context, req FecharCaixaRequest) (*ledger.Fechamento, error) {
	var env fechamentoEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/cash/close", nil, req, &env, true); err != nil {
		return nil, err
	}
	return env.Fechamento.toFechamento(), nil
}

// RegistrarMovimento posts a suprimento, sangria or pagamento.
func (c *Client) RegistrarMovimento(ctx context.Context, tipo ledger.Tipo, req MovimentoRequest) error {
	switch tipo {
	case ledger.TipoSuprimento, ledger.TipoSangria, ledger.TipoPagamento:
	default:
		return fmt.Errorf("tipo de movimento inválido: %q", tipo)
	}
	return c.do(ctx, http.MethodPost, "/api/cash/"+string(tipo), nil, req, nil, true)
}

// Movimentos lists the session's movements, normalized into tagged
// transactions.
func (c *Client) Movimentos(ctx context.Context, sessaoID string) ([]ledger.Transacao, error) {
	q := url.Values{"cashSessionId": {sessaoID}}
	var env transacoesEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/cash/movements", q, nil, &env, true); err != nil {
		return nil, err
	}
	return ledger.Normalizar(env.Transacoes), nil
}

// Historico pages through closed sessions.
func (c *Client) Historico(ctx context.Context, page, limit int) ([]SessaoResumo, int64, error) {
	q := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	var env historicoEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/cash/history", q, nil, &env, true); err != nil {
		return nil, 0, err
	}
	return env.Sessoes, env.Total, nil
}

// ─── Vendas ──────────────────────────────────────────────────────────────────

// Vendas lists the session's sales as tagged transactions.
func (c *Client) Vendas(ctx context.Context, sessaoID string) ([]ledger.Transacao, error) {
	q := url.Values{"cashSessionId": {sessaoID}}
	var env vendasEnvelope
	if err := c.do(ctx, http.MethodGet, "/api/pos/sales", q, nil, &env, true); err != nil {
		return nil, err
	}
	return ledger.Normalizar(env.Vendas), nil
}

// FinalizarVenda registers a completed sale and returns its id.
func (c *Client) FinalizarVenda(ctx context.Context, req FinalizarVendaRequest) (string, error) {
	var env vendaFinalizadaEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/pos/finalizeSale", nil, req, &env, true); err != nil {
		return "", err
	}
	return env.VendaID, nil
}

// NovaFinalizarVendaRequest converts a checkout result into the wire request.
func NovaFinalizarVendaRequest(operadorID, sessaoID string, v checkout.VendaFinalizada) FinalizarVendaRequest {
	req := FinalizarVendaRequest{
		OperadorID:    operadorID,
		SessaoID:      sessaoID,
		Subtotal:      int64(v.Venda.Subtotal),
		DescontoTotal: int64(v.Venda.DescontoTotal),
		Total:         int64(v.Venda.Total),
	}
	for _, it := range v.Venda.Itens {
		req.Itens = append(req.Itens, ItemVendaRequest{
			ProdutoID:  it.ProdutoID,
			Descricao:  it.Descricao,
			Quantidade: it.Quantidade,
			TotalLinha: int64(it.TotalLinha),
		})
	}
	for _, p := range v.Venda.Pagamentos {
		req.Pagamentos = append(req.Pagamentos, PagamentoRequest{
			Metodo: p.Metodo,
			Valor:  int64(p.Valor),
		})
	}
	if v.ClienteID != "" {
		cliente := v.ClienteID
		req.ClienteID = &cliente
	}
	if v.TrocoCentavos > 0 {
		req.Metadata = &VendaMetadata{TrocoCentavos: int64(v.TrocoCentavos)}
	}
	return req
}

// ─── Transport ───────────────────────────────────────────────────────────────

// do validates the body, performs the request through the circuit breaker and
// decodes the response. Only transport failures and 5xx responses count
// against the breaker; a 4xx is a healthy round-trip carrying a domain error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, auth bool) error {
	if body != nil {
		if err := validate.Struct(body); err != nil {
			return fmt.Errorf("requisição inválida: %w", err)
		}
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("api: marshal request: %w", err)
		}
	}

	var apiErr *apierror.APIError
	err := c.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("api: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if auth && c.tokens != nil {
			token, err := c.tokens.Token(ctx)
			if err != nil {
				return fmt.Errorf("api: obter token: %w", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("api: backend inacessível: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			e := apierror.New(resp.StatusCode, "erro do backend")
			_ = json.NewDecoder(resp.Body).Decode(e)
			if resp.StatusCode >= 500 {
				return e
			}
			apiErr = e
			return nil
		}

		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return fmt.Errorf("api: decode response: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if apiErr != nil {
		return apiErr
	}
	return nil
}
