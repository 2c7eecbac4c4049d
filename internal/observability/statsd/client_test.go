package statsd

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// udpListener collects datagrams sent to a local UDP socket.
func udpListener(t *testing.T) (*net.UDPConn, chan string) {
	t.Helper()
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	lines := make(chan string, 16)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			lines <- string(buf[:n])
		}
	}()
	return conn, lines
}

func recv(t *testing.T, lines chan string) string {
	t.Helper()
	select {
	case line := <-lines:
		return line
	case <-time.After(5 * time.Second):
		t.Fatal("no datagram received")
		return ""
	}
}

func TestClientDisabledIsNoop(t *testing.T) {
	client, err := NewClient(Config{Enabled: false, Address: "127.0.0.1:8125"})
	require.NoError(t, err)

	assert.False(t, client.Enabled())
	client.Count("execution.transition", 1, nil)
	client.Gauge("live", 3, nil)
	client.Timing("duration", time.Second, nil)
	assert.NoError(t, client.Close())
}

func TestClientEnabledRequiresAddress(t *testing.T) {
	client, err := NewClient(Config{Enabled: true, Address: "  "})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
}

func TestClientEmitsLines(t *testing.T) {
	conn, lines := udpListener(t)

	client, err := NewClient(Config{
		Enabled: true,
		Address: conn.LocalAddr().String(),
		Prefix:  "conveyor.",
	})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()
	require.True(t, client.Enabled())

	client.Count("execution.transition", 1, map[string]string{
		"status":       "completed",
		"subject_kind": "job",
	})
	assert.Equal(t, "conveyor.execution.transition:1|c|#status:completed,subject_kind:job", recv(t, lines))

	client.Gauge("live", 2.5, nil)
	assert.Equal(t, "conveyor.live:2.5|g", recv(t, lines))

	client.Timing("execution.duration", 1500*time.Millisecond, nil)
	assert.Equal(t, "conveyor.execution.duration:1500|ms", recv(t, lines))
}

func TestClientTagOrderingIsStable(t *testing.T) {
	conn, lines := udpListener(t)

	client, err := NewClient(Config{Enabled: true, Address: conn.LocalAddr().String()})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	client.Count("c", 1, map[string]string{"z": "1", "a": "2", " ": "skipped"})
	assert.Equal(t, "c:1|c|#a:2,z:1", recv(t, lines))
}

func TestClientNilReceiver(t *testing.T) {
	var client *Client
	assert.False(t, client.Enabled())
	client.Count("c", 1, nil)
	assert.NoError(t, client.Close())
}

func TestClientCloseStopsEmission(t *testing.T) {
	conn, lines := udpListener(t)

	client, err := NewClient(Config{Enabled: true, Address: conn.LocalAddr().String()})
	require.NoError(t, err)

	client.Count("before", 1, nil)
	assert.Equal(t, "before:1|c", recv(t, lines))

	require.NoError(t, client.Close())
	client.Count("after", 1, nil)

	select {
	case line := <-lines:
		t.Fatalf("unexpected datagram after close: %s", line)
	case <-time.After(100 * time.Millisecond):
	}
}
