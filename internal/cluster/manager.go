package cluster

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/AlexZinkM/cosmic-wallet/internal/client"
	"github.com/AlexZinkM/cosmic-wallet/internal/common"
	"github.com/AlexZinkM/cosmic-wallet/internal/event"
	"github.com/AlexZinkM/cosmic-wallet/internal/storage"

	"github.com/rs/zerolog"
)

// Dialer opens a connection to a cluster.
type Dialer func(c Cluster) client.Connection

// Binding is the active cluster together with its connection.
// It is replaced as a whole, never mutated.
type Binding struct {
	Cluster    Cluster
	Connection client.Connection
}

// Manager owns the active Binding.
type Manager struct {
	store storage.Store
	dial  Dialer
	log   zerolog.Logger

	mu       sync.Mutex // serializes writers
	known    []Cluster
	custom   *Cluster
	fallback Slug

	current atomic.Pointer[Binding]
	feed    event.Feed[Cluster]
}

// NewManager restores the persisted selection. fallback is used when nothing was
// persisted or the persisted cluster no longer exists.
func NewManager(store storage.Store, known []Cluster, fallback Slug, dial Dialer, log zerolog.Logger) (*Manager, error) {
	if len(known) == 0 {
		return nil, fmt.Errorf("no clusters configured")
	}
	m := &Manager{
		store:    store,
		dial:     dial,
		log:      log,
		known:    append([]Cluster(nil), known...),
		fallback: fallback,
	}

	var custom Cluster
	ok, err := storage.GetJSON(store, storage.KeyCustomCluster, &custom)
	if err != nil {
		return nil, err
	}
	if ok && ValidateEndpoint(custom.HTTPEndpoint) == nil {
		custom.Slug = Custom
		m.custom = &custom
	}

	slug := fallback
	var persisted Slug
	ok, err = storage.GetJSON(store, storage.KeySelectedCluster, &persisted)
	if err != nil {
		return nil, err
	}
	if ok {
		slug = persisted
	}

	c, found := m.lookup(slug)
	if !found {
		c = m.defaultCluster()
		m.log.Warn().Str("cluster", string(slug)).Str("using", string(c.Slug)).Msg("cluster not available")
	}
	m.bind(c)
	return m, nil
}

// Reset drops the custom cluster and binds the default one. Nothing is
// persisted; it follows a wipe of the store.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.custom = nil
	c := m.defaultCluster()
	m.bind(c)
	m.mu.Unlock()

	m.log.Info().Str("cluster", string(c.Slug)).Msg("cluster selection reset")
	m.feed.Send(c)
}

// Current returns the active binding.
func (m *Manager) Current() Binding {
	return *m.current.Load()
}

// Cluster returns the active cluster.
func (m *Manager) Cluster() Cluster {
	return m.current.Load().Cluster
}

// Connection returns the active connection.
func (m *Manager) Connection() client.Connection {
	return m.current.Load().Connection
}

// Clusters returns the known clusters followed by the custom one, if set.
func (m *Manager) Clusters() []Cluster {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]Cluster(nil), m.known...)
	if m.custom != nil {
		out = append(out, *m.custom)
	}
	return out
}

// Select makes slug the active cluster and persists the choice.
func (m *Manager) Select(slug Slug) (Cluster, error) {
	m.mu.Lock()
	c, ok := m.lookup(slug)
	if !ok {
		m.mu.Unlock()
		return Cluster{}, common.Invalid("cluster", fmt.Errorf("%w: %s", ErrUnknownCluster, slug))
	}
	if err := storage.SetJSON(m.store, storage.KeySelectedCluster, slug); err != nil {
		m.mu.Unlock()
		return Cluster{}, err
	}
	m.bind(c)
	m.mu.Unlock()

	m.log.Info().Str("cluster", string(c.Slug)).Str("endpoint", c.HTTPEndpoint).Msg("cluster selected")
	m.feed.Send(c)
	return c, nil
}

// SetCustom registers the custom cluster and selects it.
func (m *Manager) SetCustom(httpEndpoint, label, wsEndpoint string) (Cluster, error) {
	httpEndpoint = strings.TrimSpace(httpEndpoint)
	if err := ValidateEndpoint(httpEndpoint); err != nil {
		return Cluster{}, common.Invalid("endpoint", err)
	}
	if wsEndpoint != "" {
		if err := validateWS(wsEndpoint); err != nil {
			return Cluster{}, common.Invalid("ws endpoint", err)
		}
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = "Custom"
	}
	c := Cluster{HTTPEndpoint: httpEndpoint, WSEndpoint: wsEndpoint, Slug: Custom, Label: label}

	m.mu.Lock()
	if err := storage.SetJSON(m.store, storage.KeyCustomCluster, c); err != nil {
		m.mu.Unlock()
		return Cluster{}, err
	}
	if err := storage.SetJSON(m.store, storage.KeySelectedCluster, Custom); err != nil {
		m.mu.Unlock()
		return Cluster{}, err
	}
	m.custom = &c
	m.bind(c)
	m.mu.Unlock()

	m.log.Info().Str("endpoint", c.HTTPEndpoint).Str("label", c.Label).Msg("custom cluster set")
	m.feed.Send(c)
	return c, nil
}

// Subscribe registers fn for cluster changes.
func (m *Manager) Subscribe(fn func(Cluster)) func() {
	return m.feed.Subscribe(fn)
}

// FormatTransactionLink returns the explorer URL of signature on the active cluster.
func (m *Manager) FormatTransactionLink(signature string) string {
	return TransactionLink(m.Cluster(), signature)
}

// FormatAccountLink returns the explorer URL of address on the active cluster.
func (m *Manager) FormatAccountLink(address string) string {
	return AccountLink(m.Cluster(), address)
}

func (m *Manager) bind(c Cluster) {
	m.current.Store(&Binding{Cluster: c, Connection: m.dial(c)})
}

func (m *Manager) defaultCluster() Cluster {
	if c, ok := m.lookup(m.fallback); ok {
		return c
	}
	return m.known[0]
}

func (m *Manager) lookup(slug Slug) (Cluster, bool) {
	if slug == Custom {
		if m.custom == nil {
			return Cluster{}, false
		}
		return *m.custom, true
	}
	for _, c := range m.known {
		if c.Slug == slug {
			return c, true
		}
	}
	return Cluster{}, false
}

func validateWS(endpoint string) error {
	lower := strings.ToLower(endpoint)
	if !strings.HasPrefix(lower, "ws://") && !strings.HasPrefix(lower, "wss://") {
		return fmt.Errorf("websocket endpoint must start with ws:// or wss://")
	}
	return nil
}
