package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/mixview/mixview/internal/api"
)

var (
	_ list.Item = serviceItem{}
)

// serviceItem wraps one linkable service to implement [list.Item].
type serviceItem struct {
	name      string
	connected bool
}

func (i serviceItem) FilterValue() string { return i.name }
func (i serviceItem) Title() string { return displayName(i.name) }
func (i serviceItem) Description() string {
	if i.connected {
		return fmt.Sprintf("%s • connected ✓", authLabel(i.name))
	}
	return fmt.Sprintf("%s • not linked", authLabel(i.name))
}

// displayName maps a service slug to its product name.
func displayName(service string) string {
	switch service {
	case api.ServiceSpotify:
		return "Spotify"
	case api.ServiceLastfm:
		return "Last.fm"
	case api.ServiceDiscogs:
		return "Discogs"
	case api.ServiceYouTube:
		return "YouTube"
	default:
		return service
	}
}

// authLabel names the credential kind a service links with.
func authLabel(service string) string {
	switch service {
	case api.ServiceSpotify:
		return "OAuth"
	case api.ServiceDiscogs:
		return "personal access token"
	default:
		return "API key"
	}
}
