package datastore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/nethajinirmal13/mlrun/internal/logging"
)

// Factory constructs a store for one endpoint. The endpoint is the
// authority part of the URL, including any userinfo so stores can reject
// inline credentials themselves.
type Factory func(ctx context.Context, scheme, endpoint string, secrets Secrets) (Store, error)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSecrets sets the credential source handed to store factories.
func WithSecrets(secrets Secrets) ManagerOption {
	return func(m *Manager) {
		m.secrets = secrets
	}
}

// Manager resolves object URLs to stores. Stores are created on first
// use and cached per scheme and endpoint for the life of the manager.
type Manager struct {
	mu        sync.RWMutex
	factories map[string]Factory
	stores    map[string]Store
	secrets   Secrets
}

// NewManager creates an empty manager. Schemes are added with Register.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		factories: make(map[string]Factory),
		stores:    make(map[string]Store),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a factory for a URL scheme, replacing any previous one.
func (m *Manager) Register(scheme string, factory Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[scheme] = factory
}

// Resolve returns the store serving rawURL and the key within that
// store. URLs without a scheme resolve to the file store.
func (m *Manager) Resolve(ctx context.Context, rawURL string) (Store, string, error) {
	scheme, endpoint, subpath, err := splitURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	cacheKey := scheme + "://" + endpoint

	m.mu.RLock()
	s, ok := m.stores[cacheKey]
	m.mu.RUnlock()
	if ok {
		return s, subpath, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[cacheKey]; ok {
		return s, subpath, nil
	}

	factory, ok := m.factories[scheme]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	s, err = factory(ctx, scheme, endpoint, m.secrets)
	if err != nil {
		return nil, "", fmt.Errorf("create %s store: %w", scheme, err)
	}
	m.stores[cacheKey] = s

	logging.Debug("store created",
		logging.String("scheme", scheme),
		logging.String("endpoint", endpoint),
		logging.String("kind", s.Kind()))

	return s, subpath, nil
}

// splitURL breaks an object URL into scheme, endpoint and key. Userinfo
// stays attached to the endpoint; validating it is the store's job.
func splitURL(rawURL string) (scheme, endpoint, subpath string, err error) {
	if !strings.Contains(rawURL, "://") {
		return "file", "", rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", "", InvalidArgument("parse url %q: %v", rawURL, err)
	}
	endpoint = u.Host
	if u.User != nil {
		endpoint = u.User.String() + "@" + u.Host
	}
	return u.Scheme, endpoint, u.Path, nil
}
