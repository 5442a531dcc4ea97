package normalize

import (
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Match thresholds per entity type. Artists need the closest match because
// short names collide easily; tracks get slack for featuring tags.
const (
	ArtistThreshold = 0.90
	AlbumThreshold  = 0.88
	TrackThreshold  = 0.85
)

// Similarity scores two names from 0 (unrelated) to 1 (same entity).
//
// Names are normalized first, so "Björk" and "bjork" score 1.
func Similarity(a, b string) float64 {
	return score(a, b, false)
}

func score(a, b string, strict bool) float64 {
	if a == "" || b == "" {
		return 0
	}
	if strings.EqualFold(a, b) {
		return 1
	}

	na := normalize(a, strict)
	nb := normalize(b, strict)
	if na == nb {
		if na == "" {
			return 0
		}
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}

	return ratio(na, nb)
}

// ratio converts Levenshtein distance to a [0..1] similarity.
func ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	d := levenshtein.DistanceForStrings(ra, rb, levenshtein.DefaultOptions)

	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(d)/float64(maxLen)
}

// ArtistsMatch reports whether two artist names refer to the same artist.
func ArtistsMatch(a, b string) bool {
	return score(a, b, false) >= ArtistThreshold
}

// AlbumsMatch reports whether two album titles refer to the same album.
func AlbumsMatch(a, b string) bool {
	return score(a, b, false) >= AlbumThreshold
}

// TracksMatch reports whether two track titles refer to the same recording.
// Version annotations are stripped first, so a remaster matches its original.
func TracksMatch(a, b string) bool {
	return score(RemoveVersionInfo(a), RemoveVersionInfo(b), true) >= TrackThreshold
}

// BestMatch finds the candidate most similar to target at or above the
// threshold. ok is false when nothing qualifies.
func BestMatch(target string, candidates []string, threshold float64) (match string, best float64, ok bool) {
	if target == "" || len(candidates) == 0 {
		return "", 0, false
	}

	for _, candidate := range candidates {
		s := score(target, candidate, false)
		if s > best && s >= threshold {
			best = s
			match = candidate
			ok = true
		}
	}

	return match, best, ok
}
