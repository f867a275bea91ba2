package firebird

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// State is the lifecycle state of a Connection.
type State int

// Connection states. Failed and Closed are terminal.
const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Connection is one live session. Only the Manager that created it changes
// its state.
type Connection struct {
	id     string
	config ConnectionConfig

	mu      sync.Mutex
	state   State
	session Session
}

// ID identifies the connection in logs.
func (c *Connection) ID() string {
	return c.id
}

// Config returns the effective configuration, defaults applied.
func (c *Connection) Config() ConnectionConfig {
	return c.config
}

// State returns the current lifecycle state.
func (c *Connection) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the attached session, nil unless open.
func (c *Connection) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen {
		return nil
	}
	return c.session
}

func (c *Connection) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Manager owns the connect, validate and disconnect lifecycle.
type Manager struct {
	transport  Transport
	classifier *sqlerr.Classifier
	logger     *slog.Logger
}

// NewManager creates a manager. A nil transport means the database/sql
// transport; a nil logger discards.
func NewManager(transport Transport, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if transport == nil {
		transport = NewSQLTransport(nil, logger)
	}
	return &Manager{
		transport:  transport,
		classifier: DefaultClassifier,
		logger:     logger,
	}
}

// Connect applies defaults to cfg and attaches a session. Attach failures
// come back classified and leave the connection Failed.
func (m *Manager) Connect(ctx context.Context, cfg ConnectionConfig) (*Connection, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn := &Connection{
		id:     uuid.NewString(),
		config: cfg,
		state:  StateConnecting,
	}

	session, err := m.transport.Attach(ctx, cfg.attachOptions())
	if err != nil {
		conn.setState(StateFailed)
		classified := m.classifier.Classify(sqlerr.PhaseConnect, err)
		m.logger.Debug("connection failed",
			slog.String("connection_id", conn.id),
			slog.String("host", cfg.Host),
			slog.String("database", cfg.Database),
			slog.String("kind", classified.Kind.String()))
		return nil, classified
	}

	conn.mu.Lock()
	conn.session = session
	conn.state = StateOpen
	conn.mu.Unlock()

	m.logger.Debug("connection acquired",
		slog.String("connection_id", conn.id),
		slog.String("host", cfg.Host),
		slog.String("database", cfg.Database))
	return conn, nil
}

// ConnectRetry calls Connect up to attempts times while the failure is
// retryable, pausing RetryConnectionInterval milliseconds between tries.
func (m *Manager) ConnectRetry(ctx context.Context, cfg ConnectionConfig, attempts int) (*Connection, error) {
	if attempts < 1 {
		attempts = 1
	}
	interval := time.Duration(cfg.WithDefaults().RetryConnectionInterval) * time.Millisecond

	for attempt := 1; ; attempt++ {
		conn, err := m.Connect(ctx, cfg)
		if err == nil {
			return conn, nil
		}
		if attempt >= attempts || !sqlerr.IsRetryable(err) {
			return nil, err
		}

		m.logger.Debug("retrying connection",
			slog.Int("attempt", attempt),
			slog.Duration("interval", interval),
			slog.String("error", err.Error()))
		select {
		case <-ctx.Done():
			return nil, sqlerr.New(sqlerr.KindConnectionError, ctx.Err())
		case <-time.After(interval):
		}
	}
}

// Disconnect detaches the session. It is idempotent: a closed connection
// returns nil without touching the transport. A failed detach is a
// ConnectionError and leaves the connection open.
func (m *Manager) Disconnect(ctx context.Context, conn *Connection) error {
	if conn == nil {
		return nil
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()

	if conn.state == StateClosed {
		m.logger.Debug("connection tried to disconnect but was already closed",
			slog.String("connection_id", conn.id))
		return nil
	}
	if conn.session == nil {
		conn.state = StateClosed
		return nil
	}

	if err := conn.session.Detach(ctx); err != nil {
		return sqlerr.New(sqlerr.KindConnectionError, err)
	}
	conn.session = nil
	conn.state = StateClosed

	m.logger.Debug("connection released", slog.String("connection_id", conn.id))
	return nil
}

// Validate reports whether conn is open and its session says it is
// connected. It never performs a round trip.
func (m *Manager) Validate(conn *Connection) bool {
	if conn == nil {
		return false
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	return conn.state == StateOpen && conn.session != nil && conn.session.Connected()
}
