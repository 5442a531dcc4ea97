// package formatter exports search results and discovery graphs to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mixview/mixview/internal/api"
	"github.com/mixview/mixview/internal/graph"
	"github.com/mixview/mixview/internal/shared"
)

// ExportSearchCSV converts a search response to CSV with columns: Kind, Name, Artist, Album, Year, Duration, Source
func ExportSearchCSV(resp *api.SearchResponse) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "Name", "Artist", "Album", "Year", "Duration", "Source"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range resp.Artists {
		record := []string{"artist", a.Name, "", "", "", "", a.Source}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, al := range resp.Albums {
		year := ""
		if al.ReleaseYear > 0 {
			year = strconv.Itoa(al.ReleaseYear)
		}
		record := []string{"album", al.Title, artistName(al.Artist), "", year, "", al.Source}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	for _, tr := range resp.Tracks {
		album := ""
		if tr.Album != nil {
			album = tr.Album.Title
		}
		record := []string{"track", tr.Title, artistName(tr.Artist), album, "", formatDuration(tr.DurationSeconds), tr.Source}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportSearchMarkdown converts a search response to Markdown
func ExportSearchMarkdown(resp *api.SearchResponse) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Search: %s\n\n", resp.Query))
	buf.WriteString(fmt.Sprintf("**Type**: %s\n", resp.SearchType))
	buf.WriteString(fmt.Sprintf("**Results**: %d artists, %d albums, %d tracks\n\n",
		len(resp.Artists), len(resp.Albums), len(resp.Tracks)))

	if len(resp.Artists) > 0 {
		buf.WriteString("## Artists\n\n")
		for i, a := range resp.Artists {
			sourcePart := ""
			if a.Source != "" {
				sourcePart = fmt.Sprintf(" _(%s)_", a.Source)
			}
			buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, a.Name, sourcePart))
		}
		buf.WriteString("\n")
	}

	if len(resp.Albums) > 0 {
		buf.WriteString("## Albums\n\n")
		for i, al := range resp.Albums {
			yearPart := ""
			if al.ReleaseYear > 0 {
				yearPart = fmt.Sprintf(" (%d)", al.ReleaseYear)
			}
			buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, byArtist(artistName(al.Artist), al.Title), yearPart))
		}
		buf.WriteString("\n")
	}

	if len(resp.Tracks) > 0 {
		buf.WriteString("## Tracks\n\n")
		for i, tr := range resp.Tracks {
			albumPart := ""
			if tr.Album != nil && tr.Album.Title != "" {
				albumPart = fmt.Sprintf(" (%s)", tr.Album.Title)
			}
			durationPart := ""
			if tr.DurationSeconds > 0 {
				durationPart = fmt.Sprintf(" [%s]", formatDuration(tr.DurationSeconds))
			}
			buf.WriteString(fmt.Sprintf("%d. %s%s%s\n", i+1, byArtist(artistName(tr.Artist), tr.Title), albumPart, durationPart))
		}
	}

	return buf.Bytes(), nil
}

// ExportSearchText converts a search response to plain text
func ExportSearchText(resp *api.SearchResponse) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Search: %s (%s)\n", resp.Query, resp.SearchType))
	buf.WriteString(fmt.Sprintf("Results: %d artists, %d albums, %d tracks\n\n",
		len(resp.Artists), len(resp.Albums), len(resp.Tracks)))

	for i, a := range resp.Artists {
		buf.WriteString(fmt.Sprintf("artist %d. %s\n", i+1, a.Name))
	}
	for i, al := range resp.Albums {
		buf.WriteString(fmt.Sprintf("album  %d. %s\n", i+1, byArtist(artistName(al.Artist), al.Title)))
	}
	for i, tr := range resp.Tracks {
		buf.WriteString(fmt.Sprintf("track  %d. %s\n", i+1, byArtist(artistName(tr.Artist), tr.Title)))
	}

	return buf.Bytes(), nil
}

// SearchExportResult contains the paths of files created by WriteSearchExport
type SearchExportResult struct {
	DataFile string
	MetaFile string
}

// searchMeta summarizes an exported search alongside the data file.
type searchMeta struct {
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	Artists    int    `json:"artists"`
	Albums     int    `json:"albums"`
	Tracks     int    `json:"tracks"`
	ExportedAt string `json:"exported_at"`
}

// WriteSearchExport writes a search response to disk in the requested format.
//
// Defaults to "mixview_search" as the base filename. CSV, Markdown, and text
// exports get an accompanying {base}_meta.json; JSON exports are self-describing.
func WriteSearchExport(resp *api.SearchResponse, format, basePath string) (*SearchExportResult, error) {
	if basePath == "" {
		basePath = "mixview_search"
	}

	var data []byte
	var err error
	var ext string

	switch format {
	case "csv":
		data, err = ExportSearchCSV(resp)
		ext = ".csv"
	case "markdown", "md":
		data, err = ExportSearchMarkdown(resp)
		ext = ".md"
	case "text", "txt":
		data, err = ExportSearchText(resp)
		ext = ".txt"
	case "json", "":
		data, err = shared.MarshalJSON(resp, true)
		ext = ".json"
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	result := &SearchExportResult{DataFile: basePath + ext}
	if err := os.WriteFile(result.DataFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	if ext == ".json" {
		return result, nil
	}

	meta := searchMeta{
		Query:      resp.Query,
		SearchType: resp.SearchType,
		Artists:    len(resp.Artists),
		Albums:     len(resp.Albums),
		Tracks:     len(resp.Tracks),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	metaJSON, err := shared.MarshalJSON(meta, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	result.MetaFile = basePath + "_meta.json"
	if err := os.WriteFile(result.MetaFile, metaJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return result, nil
}

// GraphExportResult contains the files created by WriteGraphExport
type GraphExportResult struct {
	Directory    string
	Files        []string
	ManifestPath string
}

// graphManifest summarizes a graph export for later inspection.
type graphManifest struct {
	Name       string   `json:"name"`
	Format     string   `json:"format"`
	Nodes      int      `json:"nodes"`
	Edges      int      `json:"edges"`
	Files      []string `json:"files"`
	ExportedAt string   `json:"exported_at"`
}

// WriteGraphExport writes a discovery graph to outputDir in the requested
// format (dot or json) along with an export_manifest.json.
//
// The directory defaults to the graph name.
func WriteGraphExport(g *graph.Graph, name, format, outputDir string) (*GraphExportResult, error) {
	if outputDir == "" {
		outputDir = name
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &GraphExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var data []byte
	var file string

	switch format {
	case "dot", "":
		format = "dot"
		data = []byte(g.DOT(name))
		file = filepath.Join(outputDir, name+".dot")
	case "json":
		var err error
		data, err = shared.MarshalJSON(g, true)
		if err != nil {
			return nil, fmt.Errorf("failed to generate graph JSON: %w", err)
		}
		file = filepath.Join(outputDir, name+".json")
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}

	if err := os.WriteFile(file, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write graph file: %w", err)
	}
	result.Files = append(result.Files, file)

	manifest := graphManifest{
		Name:       name,
		Format:     format,
		Nodes:      g.Order(),
		Edges:      g.Size(),
		Files:      result.Files,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
	}
	manifestJSON, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate manifest: %w", err)
	}

	result.ManifestPath = filepath.Join(outputDir, "export_manifest.json")
	if err := os.WriteFile(result.ManifestPath, manifestJSON, 0644); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}

	return result, nil
}

// artistName unwraps an optional embedded artist.
func artistName(a *api.Artist) string {
	if a == nil {
		return ""
	}
	return a.Name
}

// byArtist renders "Artist - Title", dropping the artist when unknown.
func byArtist(artist, title string) string {
	if artist == "" {
		return title
	}
	return artist + " - " + title
}

// formatDuration renders seconds as m:ss.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
