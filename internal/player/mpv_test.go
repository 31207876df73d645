package player

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage_TracksPosition(t *testing.T) {
	m := &MPV{ready: make(chan ReadyInfo, 1)}

	m.handleMessage(ipcMessage{Event: "property-change", Name: "time-pos", Data: 12.5})

	pos, err := m.Position(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12_500), pos)
}

func TestHandleMessage_ReadyEmitsOncePerLoad(t *testing.T) {
	m := &MPV{ready: make(chan ReadyInfo, 1)}
	m.loadPending.Store(true)

	m.handleMessage(ipcMessage{Event: "property-change", Name: "duration", Data: 600})

	select {
	case info := <-m.ready:
		assert.Equal(t, int64(600_000), info.DurationMS)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for ready signal")
	}

	// Subsequent duration changes for the same load are not re-announced
	m.handleMessage(ipcMessage{Event: "property-change", Name: "duration", Data: 601})
	select {
	case <-m.ready:
		t.Fatal("duplicate ready signal")
	default:
	}
}

func TestHandleMessage_IgnoresZeroDuration(t *testing.T) {
	m := &MPV{ready: make(chan ReadyInfo, 1)}
	m.loadPending.Store(true)

	m.handleMessage(ipcMessage{Event: "property-change", Name: "duration", Data: 0})

	select {
	case <-m.ready:
		t.Fatal("ready signal for zero duration")
	default:
	}
	assert.True(t, m.loadPending.Load())
}

func TestSend_WireFormat(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	m := &MPV{conn: client, ready: make(chan ReadyInfo, 1)}

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(server)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	require.NoError(t, m.SeekTo(context.Background(), 120_000))

	select {
	case line := <-lines:
		var req ipcRequest
		require.NoError(t, json.Unmarshal([]byte(line), &req))
		assert.Equal(t, int64(1), req.RequestID)
		require.Len(t, req.Command, 3)
		assert.Equal(t, "seek", req.Command[0])
		assert.InDelta(t, 120.0, req.Command[1], 1e-9)
		assert.Equal(t, "absolute", req.Command[2])
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for command")
	}
}
