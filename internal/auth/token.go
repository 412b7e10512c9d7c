// Package auth manages the terminal's bearer tokens. Tokens are issued by
// the backend and stored exactly as issued — the terminal never encrypts or
// otherwise transforms them locally; the backend alone validates them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"caixapos/internal/api"
)

var ErrNaoAutenticado = errors.New("não autenticado: faça login primeiro")

// refreshMargin: refresh the access token this long before it expires so an
// in-flight request never races the expiry.
const refreshMargin = 2 * time.Minute

// cacheFile is what gets persisted between terminal invocations.
type cacheFile struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Manager caches the token pair, refreshes proactively and implements
// api.TokenSource for the authenticated client.
type Manager struct {
	mu     sync.Mutex
	client *api.Client // unauthenticated client, used for login/refresh only
	path   string      // token cache file; empty disables persistence

	pair       api.TokenPair
	expiresAt  time.Time
	operadorID string
}

func NewManager(client *api.Client, cachePath string) *Manager {
	m := &Manager{client: client, path: cachePath}
	m.load()
	return m
}

// Login authenticates against the backend and caches the resulting pair.
func (m *Manager) Login(ctx context.Context, usuario, senha string) error {
	pair, err := m.client.Login(ctx, usuario, senha)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adopt(*pair)
	m.persist()
	return nil
}

// Token returns a valid access token, refreshing when close to expiry.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pair.AccessToken == "" {
		return "", ErrNaoAutenticado
	}
	if !m.expiresAt.IsZero() && time.Until(m.expiresAt) < refreshMargin {
		if m.pair.RefreshToken == "" {
			return "", ErrNaoAutenticado
		}
		pair, err := m.client.Refresh(ctx, m.pair.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("auth: refresh: %w", err)
		}
		m.adopt(*pair)
		m.persist()
	}
	return m.pair.AccessToken, nil
}

// OperadorID is the user_id claim of the current access token.
func (m *Manager) OperadorID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operadorID
}

// adopt installs a pair and extracts exp/user_id from the access token.
// ParseUnverified: the terminal has no signing secret and does not need one —
// the backend is the sole validator; we only read the schedule hints.
func (m *Manager) adopt(pair api.TokenPair) {
	m.pair = pair
	m.expiresAt = time.Time{}
	m.operadorID = ""

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, claims); err != nil {
		log.Warn().Err(err).Msg("auth: token de acesso não é um JWT legível")
		return
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		m.expiresAt = exp.Time
	}
	if uid, ok := claims["user_id"].(string); ok {
		m.operadorID = uid
	}
}

func (m *Manager) persist() {
	if m.path == "" {
		return
	}
	data, err := json.Marshal(cacheFile{
		AccessToken:  m.pair.AccessToken,
		RefreshToken: m.pair.RefreshToken,
	})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o700); err != nil {
		log.Warn().Err(err).Msg("auth: criar diretório do cache de token")
		return
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		log.Warn().Err(err).Msg("auth: persistir token")
	}
}

func (m *Manager) load() {
	if m.path == "" {
		return
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return
	}
	var c cacheFile
	if err := json.Unmarshal(data, &c); err != nil {
		return
	}
	m.adopt(api.TokenPair{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken})
}
