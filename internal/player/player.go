// Package player provides the playback backend interface and an mpv
// implementation driven over its JSON IPC socket.
//
// The backend launch uses exec.Command with explicit argument slices, no
// shell interpretation.
package player

import "context"

// ReadyInfo is emitted when a loaded source becomes playable.
type ReadyInfo struct {
	// DurationMS is the measured duration of the loaded source.
	DurationMS int64
}

// Backend abstracts the media player process.
type Backend interface {
	// SetSource loads a new source URL, replacing the current one.
	SetSource(ctx context.Context, url string) error

	// SeekTo jumps to an absolute position.
	SeekTo(ctx context.Context, positionMS int64) error

	// Play resumes playback.
	Play(ctx context.Context) error

	// Pause suspends playback.
	Pause(ctx context.Context) error

	// Position returns the current playback position. It samples the
	// backend's last observed value and never blocks on I/O.
	Position(ctx context.Context) (int64, error)

	// Ready emits once per loaded source, when the backend reports a
	// measured duration.
	Ready() <-chan ReadyInfo

	// Close terminates the backend process.
	Close() error
}
