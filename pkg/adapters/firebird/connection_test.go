package firebird

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/fbdialect/internal/testutil"
	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// fakeSession records lifecycle calls. Statement methods are unused here.
type fakeSession struct {
	connected bool
	detaches  int
	detachErr error
}

func (s *fakeSession) Query(context.Context, string, []any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeSession) Exec(context.Context, string, []any) (sql.Result, error) {
	return nil, errors.New("not implemented")
}

func (s *fakeSession) Begin(context.Context, core.TxOptions) error { return nil }
func (s *fakeSession) Commit(context.Context) error { return nil }
func (s *fakeSession) Rollback(context.Context) error { return nil }
func (s *fakeSession) Connected() bool { return s.connected }

func (s *fakeSession) Detach(context.Context) error {
	s.detaches++
	if s.detachErr != nil {
		return s.detachErr
	}
	s.connected = false
	return nil
}

// fakeTransport returns errs in order, then the session.
type fakeTransport struct {
	session  *fakeSession
	errs     []error
	attaches []AttachOptions
}

func (t *fakeTransport) Attach(_ context.Context, opts AttachOptions) (Session, error) {
	t.attaches = append(t.attaches, opts)
	if len(t.errs) > 0 {
		err := t.errs[0]
		t.errs = t.errs[1:]
		return nil, err
	}
	return t.session, nil
}

func refused() error {
	return os.NewSyscallError("connect", syscall.ECONNREFUSED)
}

func TestManager_Connect(t *testing.T) {
	transport := &fakeTransport{session: &fakeSession{connected: true}}
	m := NewManager(transport, testutil.NewTestLogger(t))

	conn, err := m.Connect(context.Background(), ConnectionConfig{Database: "db", User: "sysdba"})
	require.NoError(t, err)
	assert.Equal(t, StateOpen, conn.State())
	assert.NotEmpty(t, conn.ID())
	assert.True(t, m.Validate(conn))

	require.Len(t, transport.attaches, 1)
	assert.Equal(t, AttachOptions{Host: "localhost", Port: 3050, Database: "db", User: "sysdba", Charset: "UTF8"}, transport.attaches[0])
}

func TestManager_ConnectFailure(t *testing.T) {
	transport := &fakeTransport{errs: []error{refused()}}
	m := NewManager(transport, nil)

	conn, err := m.Connect(context.Background(), ConnectionConfig{Database: "db"})
	assert.Nil(t, conn)
	require.Error(t, err)
	assert.Equal(t, sqlerr.KindConnectionRefused, sqlerr.KindOf(err))
	assert.True(t, sqlerr.IsRetryable(err))
}

func TestManager_ConnectInvalidConfig(t *testing.T) {
	transport := &fakeTransport{}
	m := NewManager(transport, nil)

	_, err := m.Connect(context.Background(), ConnectionConfig{})
	assert.True(t, sqlerr.IsKind(err, sqlerr.KindInvalidConnection))
	assert.Empty(t, transport.attaches, "an invalid config never reaches the transport")
}

func TestManager_DisconnectIsIdempotent(t *testing.T) {
	session := &fakeSession{connected: true}
	m := NewManager(&fakeTransport{session: session}, testutil.NewTestLogger(t))
	ctx := context.Background()

	conn, err := m.Connect(ctx, ConnectionConfig{Database: "db"})
	require.NoError(t, err)

	require.NoError(t, m.Disconnect(ctx, conn))
	assert.Equal(t, StateClosed, conn.State())
	assert.Equal(t, 1, session.detaches)

	require.NoError(t, m.Disconnect(ctx, conn))
	assert.Equal(t, 1, session.detaches, "second disconnect must not reach the transport")
	assert.False(t, m.Validate(conn))
	assert.Nil(t, conn.Session())
}

func TestManager_DisconnectFailure(t *testing.T) {
	session := &fakeSession{connected: true, detachErr: errors.New("socket closed")}
	m := NewManager(&fakeTransport{session: session}, nil)
	ctx := context.Background()

	conn, err := m.Connect(ctx, ConnectionConfig{Database: "db"})
	require.NoError(t, err)

	err = m.Disconnect(ctx, conn)
	require.Error(t, err)
	assert.Equal(t, sqlerr.KindConnectionError, sqlerr.KindOf(err))
	assert.Equal(t, StateOpen, conn.State())

	session.detachErr = nil
	require.NoError(t, m.Disconnect(ctx, conn))
	assert.Equal(t, StateClosed, conn.State())
}

func TestManager_Validate(t *testing.T) {
	session := &fakeSession{connected: true}
	m := NewManager(&fakeTransport{session: session}, nil)

	assert.False(t, m.Validate(nil))

	conn, err := m.Connect(context.Background(), ConnectionConfig{Database: "db"})
	require.NoError(t, err)
	assert.True(t, m.Validate(conn))

	// the session reports itself disconnected, e.g. after a server shutdown
	session.connected = false
	assert.False(t, m.Validate(conn))
}

func TestManager_ConnectRetry(t *testing.T) {
	t.Run("transient failures are retried", func(t *testing.T) {
		transport := &fakeTransport{session: &fakeSession{connected: true}, errs: []error{refused(), refused()}}
		m := NewManager(transport, testutil.NewTestLogger(t))

		conn, err := m.ConnectRetry(context.Background(), ConnectionConfig{Database: "db", RetryConnectionInterval: 1}, 3)
		require.NoError(t, err)
		assert.Equal(t, StateOpen, conn.State())
		assert.Len(t, transport.attaches, 3)
	})

	t.Run("attempts are bounded", func(t *testing.T) {
		transport := &fakeTransport{errs: []error{refused(), refused(), refused(), refused()}}
		m := NewManager(transport, nil)

		_, err := m.ConnectRetry(context.Background(), ConnectionConfig{Database: "db", RetryConnectionInterval: 1}, 3)
		assert.True(t, sqlerr.IsKind(err, sqlerr.KindConnectionRefused))
		assert.Len(t, transport.attaches, 3)
	})

	t.Run("permanent failures are not retried", func(t *testing.T) {
		transport := &fakeTransport{errs: []error{fbError(335544472)}}
		m := NewManager(transport, nil)

		_, err := m.ConnectRetry(context.Background(), ConnectionConfig{Database: "db", RetryConnectionInterval: 1}, 3)
		assert.True(t, sqlerr.IsKind(err, sqlerr.KindAccessDenied))
		assert.Len(t, transport.attaches, 1)
	})

	t.Run("cancelled context stops retrying", func(t *testing.T) {
		transport := &fakeTransport{errs: []error{refused(), refused()}}
		m := NewManager(transport, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := m.ConnectRetry(ctx, ConnectionConfig{Database: "db", RetryConnectionInterval: 60000}, 3)
		assert.True(t, sqlerr.IsKind(err, sqlerr.KindConnectionError))
		assert.ErrorIs(t, err, context.Canceled)
	})
}
