package player

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// MPV drives an mpv process over its JSON IPC socket.
type MPV struct {
	cmd  *exec.Cmd
	conn net.Conn

	mu        sync.Mutex
	requestID int64

	positionMS atomic.Int64
	ready      chan ReadyInfo

	// duration arrives as a property change after loadfile; emit one
	// ReadyInfo per loaded source.
	loadPending atomic.Bool

	socketDir string
	closed    atomic.Bool
}

// Available checks if the mpv binary exists in PATH.
func Available() bool {
	_, err := exec.LookPath("mpv")
	return err == nil
}

// NewMPV launches an idle mpv process and connects to its IPC socket.
func NewMPV() (*MPV, error) {
	// Randomized socket path (prevents symlink attacks)
	socketDir, err := os.MkdirTemp("", "playhead-mpv-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir for mpv socket: %w", err)
	}
	socketPath := filepath.Join(socketDir, "socket")

	args := []string{
		"--idle=yes",
		"--force-window=yes",
		"--input-ipc-server=" + socketPath,
		"--really-quiet",
	}
	cmd := exec.Command("mpv", args...)
	if err := cmd.Start(); err != nil {
		_ = os.RemoveAll(socketDir)
		return nil, fmt.Errorf("starting mpv: %w", err)
	}

	conn, err := waitForSocket(socketPath, 5*time.Second)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = os.RemoveAll(socketDir)
		return nil, err
	}

	m := &MPV{
		cmd:       cmd,
		conn:      conn,
		ready:     make(chan ReadyInfo, 1),
		socketDir: socketDir,
	}

	if err := m.observeProperties(); err != nil {
		_ = m.Close()
		return nil, err
	}
	go m.readLoop()

	return m, nil
}

func waitForSocket(path string, timeout time.Duration) (net.Conn, error) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if conn, err := net.Dial("unix", path); err == nil {
			return conn, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil, fmt.Errorf("mpv IPC socket %s did not appear within %s", path, timeout)
}

type ipcRequest struct {
	Command   []any `json:"command"`
	RequestID int64 `json:"request_id"`
}

type ipcMessage struct {
	Event string  `json:"event,omitempty"`
	Name  string  `json:"name,omitempty"`
	Data  float64 `json:"data,omitempty"`
}

func (m *MPV) send(command ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requestID++
	data, err := json.Marshal(ipcRequest{Command: command, RequestID: m.requestID})
	if err != nil {
		return fmt.Errorf("marshal mpv command: %w", err)
	}
	data = append(data, '\n')
	if _, err := m.conn.Write(data); err != nil {
		return fmt.Errorf("write mpv command: %w", err)
	}
	return nil
}

func (m *MPV) observeProperties() error {
	if err := m.send("observe_property", 1, "time-pos"); err != nil {
		return err
	}
	return m.send("observe_property", 2, "duration")
}

// readLoop consumes property-change events from the IPC socket and keeps
// the last observed position available for non-blocking sampling.
func (m *MPV) readLoop() {
	scanner := bufio.NewScanner(m.conn)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			continue
		}
		m.handleMessage(msg)
	}
}

func (m *MPV) handleMessage(msg ipcMessage) {
	if msg.Event != "property-change" {
		return
	}
	switch msg.Name {
	case "time-pos":
		m.positionMS.Store(int64(msg.Data * 1000))
	case "duration":
		if msg.Data > 0 && m.loadPending.CompareAndSwap(true, false) {
			select {
			case m.ready <- ReadyInfo{DurationMS: int64(msg.Data * 1000)}:
			default:
			}
		}
	}
}

// SetSource loads a new source URL, replacing the current one.
func (m *MPV) SetSource(_ context.Context, url string) error {
	m.positionMS.Store(0)
	m.loadPending.Store(true)
	return m.send("loadfile", url, "replace")
}

// SeekTo jumps to an absolute position.
func (m *MPV) SeekTo(_ context.Context, positionMS int64) error {
	return m.send("seek", float64(positionMS)/1000, "absolute")
}

// Play resumes playback.
func (m *MPV) Play(_ context.Context) error {
	return m.send("set_property", "pause", false)
}

// Pause suspends playback.
func (m *MPV) Pause(_ context.Context) error {
	return m.send("set_property", "pause", true)
}

// Position returns the last observed playback position.
func (m *MPV) Position(_ context.Context) (int64, error) {
	return m.positionMS.Load(), nil
}

// Ready emits once per loaded source, when mpv reports a duration.
func (m *MPV) Ready() <-chan ReadyInfo {
	return m.ready
}

// Close terminates the mpv process and removes the socket directory.
func (m *MPV) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	_ = m.send("quit")
	_ = m.conn.Close()

	// mpv exits non-zero on quit; that's normal.
	done := make(chan struct{})
	go func() {
		_ = m.cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		_ = m.cmd.Process.Kill()
	}

	return os.RemoveAll(m.socketDir)
}
