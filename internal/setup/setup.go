// package setup orchestrates the credential-linking flow against the backend.
//
// The core abstraction is Orchestrator, which validates and stores API keys,
// drives the browser-based Spotify link through the local relay, and runs
// connection tests. Operations emit progress updates via channels for
// non-blocking status reporting to CLI/UI layers.
package setup

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/keys"
	"github.com/mixview/mixview/internal/server"
	"github.com/mixview/mixview/internal/shared"
)

// Orchestrator drives credential linking, connection testing, and setup
// completion against the backend.
type Orchestrator struct {
	client    *api.Client
	prober    *keys.Prober
	watcher   *Watcher
	logger    *log.Logger
	relayAddr string

	// OpenBrowser launches the system browser for the Spotify consent
	// page. Swapped in tests.
	OpenBrowser func(url string) error
}

// NewOrchestrator creates an Orchestrator. The relay address must match
// the frontend origin the backend redirects to after the Spotify
// callback. A nil logger falls back to stderr.
func NewOrchestrator(client *api.Client, prober *keys.Prober, logger *log.Logger, relayAddr string) *Orchestrator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Orchestrator{
		client:      client,
		prober:      prober,
		watcher:     NewWatcher(client),
		logger:      shared.WithLogger(logger, "component", "setup"),
		relayAddr:   relayAddr,
		OpenBrowser: shared.OpenBrowser,
	}
}

// Watcher returns the completion watcher so callers can tune its timing.
func (o *Orchestrator) Watcher() *Watcher {
	return o.watcher
}

// AggregateStatus is the client-side view of how far setup has come.
type AggregateStatus struct {
	Required   []string `json:"required"`
	Connected  []string `json:"connected"`
	Missing    []string `json:"missing"`
	Completion float64  `json:"completion_percentage"`
	Complete   bool     `json:"setup_complete"`
}

// LinkAPIKey validates, stores, and tests a key-based credential.
//
// When verify is set the credential is probed directly against the
// provider before it is sent to the backend.
func (o *Orchestrator) LinkAPIKey(ctx context.Context, progress chan<- ProgressUpdate, service, secret string, verify bool) (*api.TestResult, error) {
	if service == api.ServiceSpotify {
		return nil, fmt.Errorf("%w: spotify links through OAuth, not an API key", shared.ErrInvalidArgument)
	}
	if !api.KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	sendProgress(progress, apikeyUpdate(service, 1, 3))

	if err := keys.ValidateFormat(service, secret); err != nil {
		sendProgress(progress, failedUpdate(service, err))
		return nil, err
	}

	if verify {
		if o.prober == nil {
			return nil, fmt.Errorf("%w: prober not initialized", shared.ErrServiceUnavailable)
		}
		o.logger.Debug("probing provider directly", "service", service)
		if err := o.prober.Probe(ctx, service, secret); err != nil {
			sendProgress(progress, failedUpdate(service, err))
			return nil, err
		}
	}

	sendProgress(progress, storeUpdate(service, 2, 3))

	var err error
	if service == api.ServiceDiscogs {
		_, err = o.client.StoreToken(ctx, service, secret)
	} else {
		_, err = o.client.StoreAPIKey(ctx, service, secret)
	}
	if err != nil {
		sendProgress(progress, failedUpdate(service, err))
		return nil, err
	}

	sendProgress(progress, testingUpdate(service, 3, 3))
	return o.test(ctx, progress, service)
}

// LinkSpotify runs the browser-based Spotify link flow.
//
// Fetches the authorization URL from the backend, starts the local
// relay, opens the browser (or emits the URL when noBrowser is set),
// waits for the link to land, then runs the backend's connection test.
func (o *Orchestrator) LinkSpotify(ctx context.Context, progress chan<- ProgressUpdate, noBrowser bool) (*api.TestResult, error) {
	sendProgress(progress, introUpdate(api.ServiceSpotify, "Requesting authorization URL from the backend..."))

	authURL, err := o.client.SpotifyAuthURL(ctx)
	if err != nil {
		sendProgress(progress, failedUpdate(api.ServiceSpotify, err))
		return nil, err
	}

	handler := server.NewRelayHandler()
	router := server.NewBasicRouter()
	router.Use(server.LogRequests(o.logger))
	router.Handler(handler)

	srv := &http.Server{Addr: o.relayAddr, Handler: router}
	serverErrors := make(chan error, 1)

	go func() {
		o.logger.Debug("starting oauth relay", "addr", o.relayAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			o.logger.Warn("relay shutdown failed", "error", err)
		}
	}()

	// Give the relay a beat to bind before sending the user to it.
	time.Sleep(100 * time.Millisecond)

	if noBrowser {
		sendProgress(progress, authorizeUpdate(api.ServiceSpotify, "Open this URL in your browser to authorize Spotify:\n\n  "+authURL))
	} else if err := o.OpenBrowser(authURL); err != nil {
		o.logger.Warn("failed to open browser", "error", err)
		sendProgress(progress, authorizeUpdate(api.ServiceSpotify, "Could not open a browser. Open this URL yourself:\n\n  "+authURL))
	} else {
		sendProgress(progress, authorizeUpdate(api.ServiceSpotify, "Opening browser for Spotify authorization..."))
	}

	if err := o.watcher.Wait(ctx, progress, handler.Result(), serverErrors); err != nil {
		sendProgress(progress, failedUpdate(api.ServiceSpotify, err))
		return nil, err
	}

	sendProgress(progress, testingUpdate(api.ServiceSpotify, 1, 1))
	return o.test(ctx, progress, api.ServiceSpotify)
}

// TestService runs the backend's connection test for one service.
func (o *Orchestrator) TestService(ctx context.Context, progress chan<- ProgressUpdate, service string) (*api.TestResult, error) {
	if !api.KnownService(service) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	sendProgress(progress, testingUpdate(service, 1, 1))
	return o.test(ctx, progress, service)
}

// test calls the backend test endpoint and emits the terminal update.
func (o *Orchestrator) test(ctx context.Context, progress chan<- ProgressUpdate, service string) (*api.TestResult, error) {
	result, err := o.client.TestService(ctx, service)
	if err != nil {
		sendProgress(progress, failedUpdate(service, err))
		return nil, err
	}

	if !result.TestSuccessful {
		err := fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, result.Message)
		sendProgress(progress, failedUpdate(service, err))
		return result, err
	}

	sendProgress(progress, connectedUpdate(service, result.Message, result))
	return result, nil
}

// TestAll runs connection tests for every configured service.
func (o *Orchestrator) TestAll(ctx context.Context, progress chan<- ProgressUpdate) (*api.TestAllResponse, error) {
	sendProgress(progress, testingUpdate("all", 1, 1))

	resp, err := o.client.TestAllServices(ctx)
	if err != nil {
		sendProgress(progress, failedUpdate("all", err))
		return nil, err
	}

	names := make([]string, 0, len(resp.Results))
	for name := range resp.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		result := resp.Results[name]
		if result.TestSuccessful {
			sendProgress(progress, connectedUpdate(name, result.Message, result))
		} else {
			sendProgress(progress, ProgressUpdate{
				Service: name,
				Phase:   Failed,
				Step:    i + 1,
				Total:   len(names),
				Message: result.Message,
				Data:    result,
			})
		}
	}

	return resp, nil
}

// Status aggregates the backend's setup state into required, connected,
// and missing service sets with a completion percentage.
func (o *Orchestrator) Status(ctx context.Context) (*AggregateStatus, error) {
	setupStatus, err := o.client.SetupStatus(ctx)
	if err != nil {
		return nil, err
	}

	connections, err := o.client.ServicesStatus(ctx)
	if err != nil {
		return nil, err
	}

	required := mapset.NewSet[string]()
	for name := range setupStatus.AvailableServices {
		required.Add(name)
	}
	if required.Cardinality() == 0 {
		required.Append(api.LinkableServices...)
	}

	connected := mapset.NewSet[string]()
	for _, s := range connections.Services {
		if s.IsConnected {
			connected.Add(s.ServiceName)
		}
	}

	missing := required.Difference(connected)
	linked := required.Intersect(connected)

	agg := &AggregateStatus{
		Required:  required.ToSlice(),
		Connected: connected.ToSlice(),
		Missing:   missing.ToSlice(),
		Complete:  setupStatus.UserSetupComplete,
	}
	sort.Strings(agg.Required)
	sort.Strings(agg.Connected)
	sort.Strings(agg.Missing)

	if required.Cardinality() > 0 {
		agg.Completion = float64(linked.Cardinality()) / float64(required.Cardinality()) * 100
	}

	return agg, nil
}

// Complete verifies at least one service is connected, then marks setup
// finished on the backend.
func (o *Orchestrator) Complete(ctx context.Context) (*api.CompleteSetupResponse, error) {
	agg, err := o.Status(ctx)
	if err != nil {
		return nil, err
	}

	if len(agg.Connected) == 0 {
		return nil, fmt.Errorf("%w: no services connected yet", shared.ErrSetupIncomplete)
	}

	return o.client.CompleteSetup(ctx, agg.Connected)
}
