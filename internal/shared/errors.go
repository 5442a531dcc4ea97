package shared

import "fmt"

// Sentinel errors matched with errors.Is across the CLI. Commands wrap them
// as fmt.Errorf("%w: detail", ...) so callers can branch on the category.
var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Session errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrNoSession        = fmt.Errorf("no saved session")
	ErrVaultLocked      = fmt.Errorf("wrong vault key or corrupted session file")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Backend and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUnknownService     = fmt.Errorf("unknown service")
	ErrSetupIncomplete    = fmt.Errorf("setup incomplete")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
