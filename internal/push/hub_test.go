package push

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknotify/internal/logger"
)

type fakeConn struct {
	sent []interface{}
	err  error
}

func (c *fakeConn) SendJSON(v interface{}) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, v)
	return nil
}

func TestBroadcastReachesAllUserConnections(t *testing.T) {
	hub := NewHub(logger.NopLogger())

	alice1 := &fakeConn{}
	alice2 := &fakeConn{}
	bob := &fakeConn{}
	hub.Register(alice1, "alice")
	hub.Register(alice2, "alice")
	hub.Register(bob, "bob")

	hub.BroadcastEvent("alice", "task.created", map[string]string{"title": "x"})

	require.Len(t, alice1.sent, 1)
	require.Len(t, alice2.sent, 1)
	assert.Empty(t, bob.sent)

	msg := alice1.sent[0].(Message)
	assert.Equal(t, "task.created", msg.Type)
}

func TestBroadcastUnknownUserIsNoOp(t *testing.T) {
	hub := NewHub(logger.NopLogger())
	hub.Broadcast("nobody", Message{Type: "task.created"})
	assert.Equal(t, 0, hub.Total())
}

func TestBroadcastPrunesDeadConnections(t *testing.T) {
	hub := NewHub(logger.NopLogger())

	healthy := &fakeConn{}
	dead := &fakeConn{err: fmt.Errorf("connection reset")}
	hub.Register(healthy, "alice")
	hub.Register(dead, "alice")

	hub.Broadcast("alice", Message{Type: "task.updated"})

	// The healthy connection still got the message, the dead one dropped out.
	assert.Len(t, healthy.sent, 1)
	assert.Equal(t, 1, hub.Count("alice"))

	hub.Broadcast("alice", Message{Type: "task.updated"})
	assert.Len(t, healthy.sent, 2)
}

func TestUnregisterRemovesConnection(t *testing.T) {
	hub := NewHub(logger.NopLogger())

	conn := &fakeConn{}
	hub.Register(conn, "alice")
	require.Equal(t, 1, hub.Count("alice"))

	hub.Unregister(conn, "alice")
	assert.Equal(t, 0, hub.Count("alice"))
	assert.Equal(t, 0, hub.Total())

	// Double unregister must not panic or underflow.
	hub.Unregister(conn, "alice")
	assert.Equal(t, 0, hub.Total())
}

func TestCountIsPerUser(t *testing.T) {
	hub := NewHub(logger.NopLogger())

	hub.Register(&fakeConn{}, "alice")
	hub.Register(&fakeConn{}, "alice")
	hub.Register(&fakeConn{}, "bob")

	assert.Equal(t, 2, hub.Count("alice"))
	assert.Equal(t, 1, hub.Count("bob"))
	assert.Equal(t, 3, hub.Total())
}
