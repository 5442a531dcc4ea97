// package keys validates third-party service credentials before they are
// sent to the backend.
//
// Format checks are offline and cheap; probes hit the provider APIs the same
// way the backend does when it tests a stored credential.
package keys

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mixview/mixview/internal/shared"
)

const discogsMinTokenLen = 10

var (
	// lastfmKeyRe matches a Last.fm API key: exactly 32 hex characters.
	lastfmKeyRe = regexp.MustCompile(`^[a-fA-F0-9]{32}$`)

	// youtubeKeyRe matches a Google API key: the AIza prefix plus 26 to 46
	// more URL-safe characters, 30 to 50 total.
	youtubeKeyRe = regexp.MustCompile(`^AIza[A-Za-z0-9_-]{26,46}$`)
)

// ValidateFormat checks that a credential looks plausible for the given
// service without touching the network.
//
// Spotify is rejected outright: it links via OAuth, not a pasted key.
func ValidateFormat(service, credential string) error {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return fmt.Errorf("%w: empty credential", shared.ErrInvalidCredentials)
	}

	switch service {
	case "lastfm":
		if !lastfmKeyRe.MatchString(credential) {
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, FormatHint("lastfm"))
		}
	case "youtube":
		if !youtubeKeyRe.MatchString(credential) {
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, FormatHint("youtube"))
		}
	case "discogs":
		if strings.ContainsFunc(credential, isSpace) || len(credential) < discogsMinTokenLen {
			return fmt.Errorf("%w: %s", shared.ErrInvalidCredentials, FormatHint("discogs"))
		}
	case "spotify":
		return fmt.Errorf("%w: spotify links through OAuth, not an API key", shared.ErrInvalidArgument)
	default:
		return fmt.Errorf("%w: %s", shared.ErrUnknownService, service)
	}

	return nil
}

// FormatHint describes the expected credential shape for a service.
func FormatHint(service string) string {
	switch service {
	case "lastfm":
		return "Last.fm API keys are 32 hexadecimal characters"
	case "youtube":
		return "YouTube API keys start with AIza and are 30 to 50 characters"
	case "discogs":
		return fmt.Sprintf("Discogs tokens are at least %d characters with no spaces", discogsMinTokenLen)
	default:
		return ""
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
