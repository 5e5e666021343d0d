package flac

import (
	"regexp"
	"strconv"
	"strings"
)

// TagBag holds every tag recognized by §4.1, already validated against its
// documented semantics. Values are kept as strings (the store's
// file_metadata rows store everything verbatim); only the disc and track
// numbers and the two loudness tags are parsed to native types.
type TagBag struct {
	Album                string
	AlbumArtist          string
	AlbumArtists         []string // repeatable
	AlbumArtistSort      string
	AlbumArtistsSort     []string // repeatable
	Artist               string
	MusicBrainzAlbumArtistIDs []string // repeatable
	MusicBrainzAlbumID   string
	MusicBrainzTrackID   string
	DiscNumber           int
	TrackNumber          int
	OriginalDate         string // YYYY | YYYY-MM | YYYY-MM-DD
	Date                 string
	Title                string
	TrackLoudnessLUFS    *float64
	AlbumLoudnessLUFS    *float64
}

var dateRE = regexp.MustCompile(`^\d{4}(-\d{2}(-\d{2})?)?$`)

// EffectiveOriginalDate returns OriginalDate, falling back to Date per §4.1.
func (t TagBag) EffectiveOriginalDate() string {
	if t.OriginalDate != "" {
		return t.OriginalDate
	}
	return t.Date
}

// buildTagBag reduces a raw Vorbis comment list (case-insensitive "KEY=value"
// entries, as returned by flacvorbis) into a validated TagBag.
func buildTagBag(path string, comments []string) (TagBag, error) {
	raw := map[string][]string{}
	for _, c := range comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		raw[key] = append(raw[key], value)
	}

	first := func(key string) string {
		if vs := raw[key]; len(vs) > 0 {
			return vs[0]
		}
		return ""
	}

	bag := TagBag{
		Album:            first("album"),
		AlbumArtist:      first("albumartist"),
		AlbumArtists:     raw["albumartists"],
		AlbumArtistSort:  first("albumartistsort"),
		AlbumArtistsSort: raw["albumartistssort"],
		Artist:           first("artist"),
		MusicBrainzAlbumArtistIDs: raw["musicbrainz_albumartistid"],
		MusicBrainzAlbumID:        first("musicbrainz_albumid"),
		MusicBrainzTrackID:        first("musicbrainz_trackid"),
		OriginalDate:              first("originaldate"),
		Date:                      first("date"),
		Title:                     first("title"),
	}

	discStr := first("discnumber")
	if discStr == "" {
		bag.DiscNumber = 1
	} else {
		n, err := strconv.Atoi(discStr)
		if err != nil || n < 0 || n >= 16 {
			return TagBag{}, &ErrTagInvalid{Path: path, Tag: "discnumber", Value: discStr, Reason: "must be an integer in [0, 16)"}
		}
		bag.DiscNumber = n
	}

	trackStr := first("tracknumber")
	if trackStr == "" {
		return TagBag{}, &ErrTagInvalid{Path: path, Tag: "tracknumber", Value: trackStr, Reason: "required"}
	}
	n, err := strconv.Atoi(trackStr)
	if err != nil || n < 0 || n >= 256 {
		return TagBag{}, &ErrTagInvalid{Path: path, Tag: "tracknumber", Value: trackStr, Reason: "must be an integer in [0, 256)"}
	}
	bag.TrackNumber = n

	for _, field := range []string{"originaldate", "date"} {
		if v := first(field); v != "" && !dateRE.MatchString(v) {
			return TagBag{}, &ErrTagInvalid{Path: path, Tag: field, Value: v, Reason: "must be YYYY, YYYY-MM or YYYY-MM-DD"}
		}
	}

	if v := first("bs17704_track_loudness"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return TagBag{}, &ErrTagInvalid{Path: path, Tag: "bs17704_track_loudness", Value: v, Reason: "must be a float"}
		}
		bag.TrackLoudnessLUFS = &f
	}
	if v := first("bs17704_album_loudness"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return TagBag{}, &ErrTagInvalid{Path: path, Tag: "bs17704_album_loudness", Value: v, Reason: "must be a float"}
		}
		bag.AlbumLoudnessLUFS = &f
	}

	return bag, nil
}
