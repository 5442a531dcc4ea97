package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/formatter"
	"github.com/mixview/mixview/internal/normalize"
	"github.com/mixview/mixview/internal/shared"
	"github.com/urfave/cli/v3"
)

// SearchRun searches the backend across every linked service.
func (r *Runner) SearchRun(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	searchType := cmd.String("type")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	format := cmd.String("format")
	savePath := cmd.String("save")

	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		limit = r.config.Search.Limit
	}

	r.logger.Info("searching", "query", query, "type", searchType, "limit", limit)

	resp, err := r.client.Search(ctx, query, searchType, limit)
	if err != nil {
		return err
	}

	// The backend fans out to every linked service, so the same entity
	// often comes back once per service. Raw JSON keeps the duplicates.
	if !useJSON {
		mergeSearchDuplicates(resp)
	}

	if savePath != "" {
		result, err := formatter.WriteSearchExport(resp, format, savePath)
		if err != nil {
			return err
		}
		r.writePlain("✓ Results exported to %s\n", result.DataFile)
		if result.MetaFile != "" {
			r.writePlain("  Metadata: %s\n", result.MetaFile)
		}
		return nil
	}

	if format != "" {
		var data []byte
		switch format {
		case "csv":
			data, err = formatter.ExportSearchCSV(resp)
		case "markdown", "md":
			data, err = formatter.ExportSearchMarkdown(resp)
		case "text", "txt":
			data, err = formatter.ExportSearchText(resp)
		default:
			return fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
		}
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	if useJSON {
		return r.writeJSON(resp, pretty)
	}

	total := len(resp.Artists) + len(resp.Albums) + len(resp.Tracks)
	if total == 0 {
		return r.writePlain("No results for %q.\n", query)
	}

	r.writePlain("Results for %q: %d artists, %d albums, %d tracks\n",
		query, len(resp.Artists), len(resp.Albums), len(resp.Tracks))

	if len(resp.Artists) > 0 {
		r.writePlain("\nArtists:\n")
		for i, a := range resp.Artists {
			r.writePlain("%d. %s", i+1, a.Name)
			if a.Source != "" {
				r.writePlain(" [%s]", a.Source)
			}
			r.writePlain("\n")
		}
	}

	if len(resp.Albums) > 0 {
		r.writePlain("\nAlbums:\n")
		for i, al := range resp.Albums {
			r.writePlain("%d. %s", i+1, al.Title)
			if al.Artist != nil && al.Artist.Name != "" {
				r.writePlain(" by %s", al.Artist.Name)
			}
			r.writePlain("\n")
		}
	}

	if len(resp.Tracks) > 0 {
		r.writePlain("\nTracks:\n")
		for i, tr := range resp.Tracks {
			r.writePlain("%d. %s", i+1, tr.Title)
			if tr.Artist != nil && tr.Artist.Name != "" {
				r.writePlain(" by %s", tr.Artist.Name)
			}
			if tr.Album != nil && tr.Album.Title != "" {
				r.writePlain(" (%s)", tr.Album.Title)
			}
			r.writePlain("\n")
		}
	}

	return nil
}

// Related fetches related content for a seed artist, album, or track.
func (r *Runner) Related(ctx context.Context, cmd *cli.Command) error {
	q := api.RelatedQuery{
		ArtistName: cmd.String("artist"),
		AlbumTitle: cmd.String("album"),
		TrackTitle: cmd.String("track"),
		TopN:       cmd.Int("top"),
	}
	useJSON := cmd.Bool("json")

	if q.ArtistName == "" && q.AlbumTitle == "" && q.TrackTitle == "" {
		return fmt.Errorf("%w: one of --artist, --album, or --track is required", shared.ErrMissingArgument)
	}

	r.logger.Info("fetching related content", "artist", q.ArtistName, "album", q.AlbumTitle, "track", q.TrackTitle)

	resp, err := r.client.Related(ctx, q)
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(resp, true)
	}

	if len(resp.Artists) == 0 && len(resp.Albums) == 0 && len(resp.Tracks) == 0 {
		r.writePlain("No related content found.\n")
		if len(resp.AvailableServices) == 0 {
			r.writePlain("No services are linked yet. Run 'mixview setup' first.\n")
		}
		return nil
	}

	if len(resp.Artists) > 0 {
		r.writePlain("Related artists:\n")
		for i, a := range resp.Artists {
			r.writePlain("%d. %s", i+1, a.Name)
			if a.Source != "" {
				r.writePlain(" [%s]", a.Source)
			}
			r.writePlain("\n")
		}
	}

	if len(resp.Albums) > 0 {
		r.writePlain("\nRelated albums:\n")
		for i, al := range resp.Albums {
			r.writePlain("%d. %s", i+1, al.Title)
			if al.Artist != nil && al.Artist.Name != "" {
				r.writePlain(" by %s", al.Artist.Name)
			}
			r.writePlain("\n")
		}
	}

	if len(resp.Tracks) > 0 {
		r.writePlain("\nRelated tracks:\n")
		for i, tr := range resp.Tracks {
			r.writePlain("%d. %s", i+1, tr.Title)
			if tr.Artist != nil && tr.Artist.Name != "" {
				r.writePlain(" by %s", tr.Artist.Name)
			}
			r.writePlain("\n")
		}
	}

	return nil
}

// mergeSearchDuplicates collapses rows that refer to the same entity across
// services. The first occurrence is kept; later duplicates fold their source
// into it and fill in fields the kept row is missing.
func mergeSearchDuplicates(resp *api.SearchResponse) {
	if resp == nil {
		return
	}

	var artists []api.Artist
	for _, a := range resp.Artists {
		if i := findArtist(artists, a.Name); i >= 0 {
			artists[i].Source = joinSources(artists[i].Source, a.Source)
			if artists[i].ImageURL == "" {
				artists[i].ImageURL = a.ImageURL
			}
			continue
		}
		artists = append(artists, a)
	}
	resp.Artists = artists

	var albums []api.Album
	for _, al := range resp.Albums {
		if i := findAlbum(albums, al); i >= 0 {
			albums[i].Source = joinSources(albums[i].Source, al.Source)
			if albums[i].ReleaseYear == 0 {
				albums[i].ReleaseYear = al.ReleaseYear
			}
			if albums[i].Artist == nil {
				albums[i].Artist = al.Artist
			}
			if normalize.IsVersionVariant(albums[i].Title) && !normalize.IsVersionVariant(al.Title) {
				albums[i].Title = al.Title
			}
			continue
		}
		albums = append(albums, al)
	}
	resp.Albums = albums

	var tracks []api.Track
	for _, tr := range resp.Tracks {
		if i := findTrack(tracks, tr); i >= 0 {
			tracks[i].Source = joinSources(tracks[i].Source, tr.Source)
			if tracks[i].DurationSeconds == 0 {
				tracks[i].DurationSeconds = tr.DurationSeconds
			}
			if tracks[i].Album == nil {
				tracks[i].Album = tr.Album
			}
			if normalize.IsVersionVariant(tracks[i].Title) && !normalize.IsVersionVariant(tr.Title) {
				tracks[i].Title = tr.Title
			}
			continue
		}
		tracks = append(tracks, tr)
	}
	resp.Tracks = tracks
}

func findArtist(kept []api.Artist, name string) int {
	for i, k := range kept {
		if normalize.ArtistsMatch(k.Name, name) {
			return i
		}
	}
	return -1
}

// findAlbum matches on title, but same-titled albums by different artists
// stay distinct.
func findAlbum(kept []api.Album, al api.Album) int {
	for i, k := range kept {
		if !normalize.AlbumsMatch(k.Title, al.Title) {
			continue
		}
		if artistName(k.Artist) != "" && artistName(al.Artist) != "" &&
			!normalize.ArtistsMatch(artistName(k.Artist), artistName(al.Artist)) {
			continue
		}
		return i
	}
	return -1
}

func findTrack(kept []api.Track, tr api.Track) int {
	for i, k := range kept {
		if !normalize.TracksMatch(k.Title, tr.Title) {
			continue
		}
		if artistName(k.Artist) != "" && artistName(tr.Artist) != "" &&
			!normalize.ArtistsMatch(artistName(k.Artist), artistName(tr.Artist)) {
			continue
		}
		return i
	}
	return -1
}

func artistName(a *api.Artist) string {
	if a == nil {
		return ""
	}
	return a.Name
}

func joinSources(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	for _, existing := range strings.Split(a, ", ") {
		if existing == b {
			return a
		}
	}
	return a + ", " + b
}

// searchCommand searches across linked services
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search artists, albums, and tracks across linked services",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Result type: all, artist, album, or track",
				Value:   "all",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum results per type",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Render as csv, markdown, or text",
			},
			&cli.StringFlag{
				Name:  "save",
				Usage: "Export results to files at this base path",
			},
		},
		Action: r.SearchRun,
	}
}

// relatedCommand fetches related content for a seed entity
func relatedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "related",
		Usage: "Show related artists, albums, and tracks for a seed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "artist",
				Usage: "Seed artist name",
			},
			&cli.StringFlag{
				Name:  "album",
				Usage: "Seed album title",
			},
			&cli.StringFlag{
				Name:  "track",
				Usage: "Seed track title",
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "Related results to request",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Related,
	}
}
