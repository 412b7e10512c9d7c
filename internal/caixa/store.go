// Package caixa holds the terminal's local session state behind a single
// store with explicit actions (abrir, registrar, iniciar/confirmar
// fechamento). All reads go through Snapshot; no session state lives anywhere
// else in the process.
package caixa

import (
	"errors"
	"sync"

	"caixapos/internal/ledger"
	"caixapos/internal/money"
)

var (
	ErrSessaoJaAberta        = errors.New("já existe uma sessão de caixa aberta")
	ErrSemSessaoAberta       = errors.New("não há sessão de caixa aberta")
	ErrSaldoInicialNegativo  = errors.New("saldo inicial não pode ser negativo")
	ErrValorInvalido         = errors.New("valor deve ser maior que zero")
	ErrSangriaExcedeCaixa    = errors.New("sangria excede o dinheiro disponível em caixa")
	ErrPagamentoExcedeLimite = errors.New("pagamento excede o limite configurado")
	ErrFechamentoPendente    = errors.New("fechamento aguardando confirmação do operador")
	ErrSemFechamento         = errors.New("nenhum fechamento pendente")
)

// Estado is an immutable snapshot of the store for rendering.
type Estado struct {
	Sessao     *ledger.Sessao
	Totais     ledger.Totais
	Fechamento *ledger.Fechamento
}

// Store serializes every state transition of the local session mirror.
type Store struct {
	mu              sync.Mutex
	sessao          *ledger.Sessao
	fechamento      *ledger.Fechamento
	limitePagamento money.Centavos
}

// NewStore creates an empty store. limitePagamento caps individual expense
// payments from the till; zero means unlimited.
func NewStore(limitePagamento money.Centavos) *Store {
	return &Store{limitePagamento: limitePagamento}
}

// Abrir installs a freshly opened session. At most one open session is held
// locally — the backend enforces the same rule per operator.
func (s *Store) Abrir(sessao ledger.Sessao) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessao != nil {
		return ErrSessaoJaAberta
	}
	if sessao.SaldoInicial < 0 {
		return ErrSaldoInicialNegativo
	}
	s.sessao = &sessao
	s.fechamento = nil
	return nil
}

// Atualizar replaces the mirrored session with a newer backend response
// (last response wins). Ignored while a close result awaits confirmation and
// when the incoming session is a different one.
func (s *Store) Atualizar(sessao ledger.Sessao) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fechamento != nil {
		return
	}
	if s.sessao != nil && s.sessao.ID != sessao.ID {
		return
	}
	s.sessao = &sessao
}

// Expirar clears the mirrored session after the backend reports none open
// (closed elsewhere, e.g. from an admin console). Ignored while a close result
// awaits the operator's confirmation.
func (s *Store) Expirar() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fechamento != nil {
		return
	}
	s.sessao = nil
}

// ValidarMovimento applies the client-side rules that block a movement before
// it is ever submitted: positive amount, sangria limited to available cash,
// pagamento limited to the configured cap.
func (s *Store) ValidarMovimento(tipo ledger.Tipo, valor money.Centavos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validarMovimentoLocked(tipo, valor)
}

func (s *Store) validarMovimentoLocked(tipo ledger.Tipo, valor money.Centavos) error {
	if s.sessao == nil {
		return ErrSemSessaoAberta
	}
	if s.fechamento != nil {
		return ErrFechamentoPendente
	}
	if valor <= 0 {
		return ErrValorInvalido
	}
	switch tipo {
	case ledger.TipoSangria:
		totais := ledger.Agregar(s.sessao.SaldoInicial, s.sessao.Transacoes)
		if valor > totais.DinheiroEmCaixa {
			return ErrSangriaExcedeCaixa
		}
	case ledger.TipoPagamento:
		if s.limitePagamento > 0 && valor > s.limitePagamento {
			return ErrPagamentoExcedeLimite
		}
	}
	return nil
}

// Registrar appends a transaction the backend has accepted. Movements are
// re-validated so a raced local mirror cannot go negative silently.
func (s *Store) Registrar(t ledger.Transacao) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Tipo != ledger.TipoVenda {
		if err := s.validarMovimentoLocked(t.Tipo, t.Valor); err != nil {
			return err
		}
	} else {
		if s.sessao == nil {
			return ErrSemSessaoAberta
		}
		if s.fechamento != nil {
			return ErrFechamentoPendente
		}
	}
	s.sessao.Transacoes = append(s.sessao.Transacoes, t)
	return nil
}

// IniciarFechamento stores the backend's close result. The session is only
// considered closed after the operator confirms the summary — a two-step gate
// so the discrepancy report cannot be dismissed by accident.
func (s *Store) IniciarFechamento(f ledger.Fechamento) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sessao == nil {
		return ErrSemSessaoAberta
	}
	if s.fechamento != nil {
		return ErrFechamentoPendente
	}
	s.fechamento = &f
	return nil
}

// ConfirmarFechamento clears the local session state and returns the final
// reconciliation result.
func (s *Store) ConfirmarFechamento() (ledger.Fechamento, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fechamento == nil {
		return ledger.Fechamento{}, ErrSemFechamento
	}
	f := *s.fechamento
	s.sessao = nil
	s.fechamento = nil
	return f, nil
}

// Snapshot returns a consistent copy of the current state with aggregates
// already computed.
func (s *Store) Snapshot() Estado {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := Estado{}
	if s.sessao != nil {
		sessao := *s.sessao
		sessao.Transacoes = append([]ledger.Transacao(nil), s.sessao.Transacoes...)
		e.Sessao = &sessao
		e.Totais = ledger.Agregar(sessao.SaldoInicial, sessao.Transacoes)
	}
	if s.fechamento != nil {
		f := *s.fechamento
		e.Fechamento = &f
	}
	return e
}
