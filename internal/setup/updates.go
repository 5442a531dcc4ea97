package setup

import "fmt"

// ProgressUpdate represents a progress event during a link or test flow.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Service string // Service being linked or tested
	Phase   Phase  // Flow phase
	Step    int    // Current step number within the flow
	Total   int    // Total steps in the flow
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Link flow phase enumeration
type Phase int

const (
	Intro Phase = iota
	Credentials
	APIKey
	Testing
	Connected
	Failed
)

func (p Phase) String() string {
	switch p {
	case Intro:
		return "intro"
	case Credentials:
		return "credentials"
	case APIKey:
		return "apikey"
	case Testing:
		return "testing"
	case Connected:
		return "connected"
	case Failed:
		return "error"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

func introUpdate(service, message string) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   Intro,
		Step:    1,
		Total:   1,
		Message: message,
	}
}

func apikeyUpdate(service string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   APIKey,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Validating %s credential format...", service),
	}
}

func storeUpdate(service string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   APIKey,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Storing %s credential with the backend...", service),
	}
}

func authorizeUpdate(service, message string) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   Credentials,
		Step:    1,
		Total:   1,
		Message: message,
	}
}

func waitingUpdate(service string, poll, maxPolls int) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   Credentials,
		Step:    poll,
		Total:   maxPolls,
		Message: fmt.Sprintf("Waiting for Spotify authorization... (poll %d/%d)", poll, maxPolls),
	}
}

func testingUpdate(service string, step, total int) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   Testing,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Testing %s connection...", service),
	}
}

func connectedUpdate(service, message string, data any) ProgressUpdate {
	if message == "" {
		message = fmt.Sprintf("%s connected", service)
	}
	return ProgressUpdate{
		Service: service,
		Phase:   Connected,
		Step:    1,
		Total:   1,
		Message: message,
		Data:    data,
	}
}

func failedUpdate(service string, err error) ProgressUpdate {
	return ProgressUpdate{
		Service: service,
		Phase:   Failed,
		Step:    1,
		Total:   1,
		Message: err.Error(),
	}
}
