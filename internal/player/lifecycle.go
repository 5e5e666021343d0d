package player

import (
	"context"
	"os/exec"
	"time"

	"github.com/musium/musium/internal/shared"
)

// Lifecycle runs the pre-playback and post-idle subprocess hooks (§4.7,
// §5 timeouts). Failures are logged and never affect playback (§7).
type Lifecycle struct {
	prePlaybackPath string
	postIdlePath    string
	logger          shared.Logger
}

// NewLifecycle creates a lifecycle runner. Empty paths disable the
// corresponding hook.
func NewLifecycle(prePlaybackPath, postIdlePath string, logger shared.Logger) *Lifecycle {
	return &Lifecycle{prePlaybackPath: prePlaybackPath, postIdlePath: postIdlePath, logger: logger}
}

// RunPrePlayback is called on the idle→playing transition. It waits up to
// 10s for the script to exit, continues regardless, and SIGKILLs it at 30s
// total if it is still running.
func (l *Lifecycle) RunPrePlayback() {
	l.run(l.prePlaybackPath, 10*time.Second, 30*time.Second)
}

// RunPostIdle is called after idle_timeout_seconds of continuous idleness.
// It is killed at 30s if still running; nothing waits on it.
func (l *Lifecycle) RunPostIdle() {
	l.run(l.postIdlePath, 0, 30*time.Second)
}

func (l *Lifecycle) run(path string, waitFor, killAfter time.Duration) {
	if path == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), killAfter)
	cmd := exec.CommandContext(ctx, path)

	if err := cmd.Start(); err != nil {
		l.logger.Warning("lifecycle script %s failed to start: %v", path, err)
		cancel()
		return
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	if waitFor > 0 {
		select {
		case err := <-done:
			cancel()
			if err != nil {
				l.logger.Warning("lifecycle script %s exited with error: %v", path, err)
			}
			return
		case <-time.After(waitFor):
			// continue regardless (§4.7); the kill deadline still applies.
		}
	}

	go func() {
		defer cancel()
		if err := <-done; err != nil {
			l.logger.Warning("lifecycle script %s exited with error: %v", path, err)
		}
	}()
}
