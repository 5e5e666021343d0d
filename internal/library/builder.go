package library

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/musium/musium/internal/store"
)

// SkippedRow records a file_metadata row excluded from the model because it
// lacked or malformed the MusicBrainz identifiers model build requires.
// Unlike ErrIdentityCollision this is not fatal — the row is logged and
// dropped (§4.3 failure model: a single bad file never aborts a scan).
type SkippedRow struct {
	Filename string
	Reason   string
}

type albumAccum struct {
	id                  AlbumID
	foreignID           string
	firstFilename       string
	title               string
	artistIDs           []ArtistID
	artistForeignIDs    []string
	creditedArtistName  string
	originalReleaseDate string
	firstSeenDate       time.Time
	rows                []store.FileMetadataRow
}

type artistAccum struct {
	id            ArtistID
	foreignID     string
	firstFilename string
	name          string
	sortName      string
}

// Build reduces an ordered (filename-ascending) stream of file_metadata
// rows into the in-memory library model (§4.4). Because the input is
// already filename-ordered, "first row seen for a given identity" is
// exactly the lexicographically-first-filename tie-break invariants 1 and
// 2 call for — no separate sort is needed for that purpose.
func Build(rows []store.FileMetadataRow) (*Library, []SkippedRow, error) {
	interner := NewInterner(1 << 16)
	albums := make(map[AlbumID]*albumAccum)
	artists := make(map[ArtistID]*artistAccum)
	var albumOrder []AlbumID
	var inconsistencies []Inconsistency
	var skipped []SkippedRow

	for _, row := range rows {
		if row.MusicBrainzAlbumID == "" || row.MusicBrainzTrackID == "" || len(row.MusicBrainzAlbumArtistIDs) == 0 {
			skipped = append(skipped, SkippedRow{Filename: row.Filename, Reason: "missing required MusicBrainz identifier"})
			continue
		}
		albumForeignUUID, err := uuid.Parse(row.MusicBrainzAlbumID)
		if err != nil {
			skipped = append(skipped, SkippedRow{Filename: row.Filename, Reason: "malformed musicbrainz_albumid"})
			continue
		}
		albumID := DeriveAlbumID(albumForeignUUID)

		acc, exists := albums[albumID]
		if exists {
			if acc.foreignID != row.MusicBrainzAlbumID {
				return nil, nil, &ErrIdentityCollision{
					Kind: "album", ID: uint64(albumID),
					ForeignIDA: acc.foreignID, FilenameA: acc.firstFilename,
					ForeignIDB: row.MusicBrainzAlbumID, FilenameB: row.Filename,
				}
			}
		} else {
			artistIDs, ok := parseArtistIDs(row.MusicBrainzAlbumArtistIDs)
			if !ok {
				skipped = append(skipped, SkippedRow{Filename: row.Filename, Reason: "malformed musicbrainz_albumartistid"})
				continue
			}
			acc = &albumAccum{
				id:                  albumID,
				foreignID:           row.MusicBrainzAlbumID,
				firstFilename:       row.Filename,
				title:               row.Album,
				artistIDs:           artistIDs,
				artistForeignIDs:    append([]string(nil), row.MusicBrainzAlbumArtistIDs...),
				creditedArtistName:  firstNonEmpty(row.AlbumArtist, row.Artist),
				originalReleaseDate: effectiveDate(row),
				firstSeenDate:       row.ImportedAt,
			}
			albums[albumID] = acc
			albumOrder = append(albumOrder, albumID)
		}

		if row.ImportedAt.Before(acc.firstSeenDate) {
			acc.firstSeenDate = row.ImportedAt
		}
		if row.Album != acc.title {
			inconsistencies = append(inconsistencies, Inconsistency{
				Field: "album", WinningFile: acc.firstFilename, ConflictFile: row.Filename,
				WinningValue: acc.title, ConflictValue: row.Album,
			})
		}
		if credited := firstNonEmpty(row.AlbumArtist, row.Artist); credited != acc.creditedArtistName {
			inconsistencies = append(inconsistencies, Inconsistency{
				Field: "album_artist", WinningFile: acc.firstFilename, ConflictFile: row.Filename,
				WinningValue: acc.creditedArtistName, ConflictValue: credited,
			})
		}
		if date := effectiveDate(row); date != acc.originalReleaseDate {
			inconsistencies = append(inconsistencies, Inconsistency{
				Field: "original_release_date", WinningFile: acc.firstFilename, ConflictFile: row.Filename,
				WinningValue: acc.originalReleaseDate, ConflictValue: date,
			})
		}
		if !stringSlicesEqual(row.MusicBrainzAlbumArtistIDs, acc.artistForeignIDs) {
			inconsistencies = append(inconsistencies, Inconsistency{
				Field: "album_artist_ids", WinningFile: acc.firstFilename, ConflictFile: row.Filename,
				WinningValue:  strings.Join(acc.artistForeignIDs, ","),
				ConflictValue: strings.Join(row.MusicBrainzAlbumArtistIDs, ","),
			})
		}
		acc.rows = append(acc.rows, row)

		// Associated purely off this row's own musicbrainz_albumartistid list
		// (not acc.artistIDs, the winning row's list, which may be a
		// different length) so a later file tagging fewer album artists than
		// the first never indexes out of range.
		names, sorts := albumArtistNamesAndSorts(row)
		for i, foreignID := range row.MusicBrainzAlbumArtistIDs {
			artistUUID, err := uuid.Parse(foreignID)
			if err != nil {
				continue
			}
			artistID := DeriveArtistID(artistUUID)
			name := valueAt(names, i)
			sortName := firstNonEmpty(valueAt(sorts, i), name)

			existing, ok := artists[artistID]
			if !ok {
				artists[artistID] = &artistAccum{
					id: artistID, foreignID: foreignID, firstFilename: row.Filename,
					name: name, sortName: sortName,
				}
				continue
			}
			if existing.foreignID != foreignID {
				return nil, nil, &ErrIdentityCollision{
					Kind: "artist", ID: uint64(artistID),
					ForeignIDA: existing.foreignID, FilenameA: existing.firstFilename,
					ForeignIDB: foreignID, FilenameB: row.Filename,
				}
			}
			if name != "" && name != existing.name {
				inconsistencies = append(inconsistencies, Inconsistency{
					Field: "artist_name", WinningFile: existing.firstFilename, ConflictFile: row.Filename,
					WinningValue: existing.name, ConflictValue: name,
				})
			}
		}
	}

	sort.Slice(albumOrder, func(i, j int) bool { return albumOrder[i] < albumOrder[j] })

	// discover_rank: ordinal by first_seen_date ascending, ties broken by
	// album ID for determinism.
	rankOrder := append([]AlbumID(nil), albumOrder...)
	sort.Slice(rankOrder, func(i, j int) bool {
		a, b := albums[rankOrder[i]], albums[rankOrder[j]]
		if !a.firstSeenDate.Equal(b.firstSeenDate) {
			return a.firstSeenDate.Before(b.firstSeenDate)
		}
		return rankOrder[i] < rankOrder[j]
	})
	discoverRank := make(map[AlbumID]int, len(rankOrder))
	for i, id := range rankOrder {
		discoverRank[id] = i
	}

	lib := &Library{Interner: interner, Inconsistencies: inconsistencies}

	lib.Albums = make([]Album, 0, len(albumOrder))
	var allTracks []Track
	for _, id := range albumOrder {
		acc := albums[id]
		tracks, err := buildAlbumTracks(acc, interner)
		if err != nil {
			return nil, nil, err
		}
		allTracks = append(allTracks, tracks...)

		lib.Albums = append(lib.Albums, Album{
			ID:                  acc.id,
			Title:               interner.Intern(acc.title),
			ArtistIDs:           acc.artistIDs,
			CreditedArtistName:  interner.Intern(acc.creditedArtistName),
			OriginalReleaseDate: acc.originalReleaseDate,
			FirstSeenDate:       acc.firstSeenDate,
			DiscoverRank:        discoverRank[id],
		})
	}
	sort.Slice(allTracks, func(i, j int) bool { return allTracks[i].ID < allTracks[j].ID })
	lib.Tracks = allTracks

	artistIDs := make([]ArtistID, 0, len(artists))
	for id := range artists {
		artistIDs = append(artistIDs, id)
	}
	sort.Slice(artistIDs, func(i, j int) bool { return artistIDs[i] < artistIDs[j] })
	lib.Artists = make([]Artist, 0, len(artistIDs))
	for _, id := range artistIDs {
		a := artists[id]
		lib.Artists = append(lib.Artists, Artist{
			ID:       a.id,
			Name:     interner.Intern(a.name),
			SortName: interner.Intern(firstNonEmpty(a.sortName, a.name)),
		})
	}

	return lib, skipped, nil
}

// buildAlbumTracks derives each row's track_id (§3.1) and detects the
// low-byte collisions that §9 open question 1 anticipates.
func buildAlbumTracks(acc *albumAccum, interner *Interner) ([]Track, error) {
	rows := append([]store.FileMetadataRow(nil), acc.rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].DiscNumber != rows[j].DiscNumber {
			return rows[i].DiscNumber < rows[j].DiscNumber
		}
		return rows[i].TrackNumber < rows[j].TrackNumber
	})

	seenForeignID := make(map[TrackID]struct{ foreignID, filename string })
	tracks := make([]Track, 0, len(rows))
	for _, row := range rows {
		trackID := DeriveTrackID(acc.id, row.DiscNumber, row.TrackNumber)
		if prior, ok := seenForeignID[trackID]; ok {
			if prior.foreignID != row.MusicBrainzTrackID {
				return nil, &ErrIdentityCollision{
					Kind: "track", ID: uint64(trackID),
					ForeignIDA: prior.foreignID, FilenameA: prior.filename,
					ForeignIDB: row.MusicBrainzTrackID, FilenameB: row.Filename,
				}
			}
			continue
		}
		seenForeignID[trackID] = struct{ foreignID, filename string }{row.MusicBrainzTrackID, row.Filename}

		var loudness *float64
		tracks = append(tracks, Track{
			ID:                trackID,
			AlbumID:           acc.id,
			DiscNumber:        row.DiscNumber,
			TrackNumberOnDisc: row.TrackNumber,
			Title:             interner.Intern(row.Title),
			ArtistName:        interner.Intern(firstNonEmpty(row.Artist, acc.creditedArtistName)),
			DurationSamples:   row.DurationSamples,
			SampleRateHz:      row.SampleRateHz,
			BitsPerSample:     row.BitsPerSample,
			ChannelCount:      row.ChannelCount,
			Filename:          row.Filename,
			FileMTime:         row.FileMTime,
			LoudnessLUFS:      loudness,
			Rating:            RatingNeutral,
		})
	}
	return tracks, nil
}

func parseArtistIDs(foreignIDs []string) ([]ArtistID, bool) {
	ids := make([]ArtistID, 0, len(foreignIDs))
	for _, fid := range foreignIDs {
		u, err := uuid.Parse(fid)
		if err != nil {
			return nil, false
		}
		ids = append(ids, DeriveArtistID(u))
	}
	return ids, true
}

func albumArtistNamesAndSorts(row store.FileMetadataRow) (names, sorts []string) {
	names = row.AlbumArtists
	if len(names) == 0 && row.AlbumArtist != "" {
		names = []string{row.AlbumArtist}
	}
	sorts = row.AlbumArtistsSort
	if len(sorts) == 0 && row.AlbumArtistSort != "" {
		sorts = []string{row.AlbumArtistSort}
	}
	return
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i, v := range a {
		if v != b[i] {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func effectiveDate(row store.FileMetadataRow) string {
	if row.OriginalDate != "" {
		return row.OriginalDate
	}
	return row.Date
}
