package setup

import (
	"context"
	"fmt"
	"time"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/server"
	"github.com/mixview/mixview/internal/shared"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 150
	defaultDeadline     = 5 * time.Minute
)

// Watcher waits for a Spotify link to land. The authorization happens in
// the user's browser against the backend, so the watcher observes from
// two directions at once: the local relay's result channel, and the
// backend's connection flag via status polls.
//
// PollInterval, MaxPolls, and Deadline are exported so tests can
// compress time.
type Watcher struct {
	client *api.Client

	PollInterval time.Duration
	MaxPolls     int
	Deadline     time.Duration
}

// NewWatcher creates a Watcher with production timing.
func NewWatcher(client *api.Client) *Watcher {
	return &Watcher{
		client:       client,
		PollInterval: defaultPollInterval,
		MaxPolls:     defaultMaxPolls,
		Deadline:     defaultDeadline,
	}
}

// Wait blocks until the Spotify connection is confirmed, the relay
// reports a failure, or the watcher gives up.
//
// A relay success is confirmed with a status fetch before returning; if
// the backend has not committed the connection yet, the watcher falls
// back to polling. Transient status-fetch errors do not abort the wait,
// the flag may flip on a later poll. A relay error fails the wait
// immediately. serverErrors carries relay bind failures and may be nil.
func (w *Watcher) Wait(ctx context.Context, progress chan<- ProgressUpdate, relay <-chan server.RelayResult, serverErrors <-chan error) error {
	ctx, cancel := context.WithTimeout(ctx, w.Deadline)
	defer cancel()

	ticker := time.NewTicker(w.PollInterval)
	defer ticker.Stop()

	polls := 0
	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: spotify link not confirmed within %s", shared.ErrTimeout, w.Deadline)

		case err := <-serverErrors:
			return fmt.Errorf("relay server error: %w", err)

		case result, ok := <-relay:
			if !ok {
				// Channel closed after its single result.
				relay = nil
				continue
			}
			if err := result.Error(); err != nil {
				return err
			}

			status, err := w.client.ServicesStatus(ctx)
			if err == nil && status.Connected(api.ServiceSpotify) {
				return nil
			}
			// Backend may still be committing; keep polling.
			relay = nil

		case <-ticker.C:
			status, err := w.client.ServicesStatus(ctx)
			if err == nil && status.Connected(api.ServiceSpotify) {
				return nil
			}

			polls++
			if polls >= w.MaxPolls {
				return fmt.Errorf("%w: gave up after %d status polls", shared.ErrTimeout, polls)
			}
			sendProgress(progress, waitingUpdate(api.ServiceSpotify, polls, w.MaxPolls))
		}
	}
}
