package flac

import "testing"

func TestBuildTagBagDefaultsDiscNumber(t *testing.T) {
	bag, err := buildTagBag("a.flac", []string{
		"ALBUM=Origin of Symmetry",
		"ARTIST=Muse",
		"TRACKNUMBER=3",
		"TITLE=Screenager",
	})
	if err != nil {
		t.Fatalf("buildTagBag: %v", err)
	}
	if bag.DiscNumber != 1 {
		t.Errorf("DiscNumber = %d, want 1", bag.DiscNumber)
	}
	if bag.TrackNumber != 3 {
		t.Errorf("TrackNumber = %d, want 3", bag.TrackNumber)
	}
}

func TestBuildTagBagRejectsOutOfRangeDiscNumber(t *testing.T) {
	_, err := buildTagBag("a.flac", []string{"DISCNUMBER=16", "TRACKNUMBER=1"})
	if err == nil {
		t.Fatal("expected error for discnumber out of range")
	}
	var tagErr *ErrTagInvalid
	if e, ok := err.(*ErrTagInvalid); ok {
		tagErr = e
	}
	if tagErr == nil || tagErr.Tag != "discnumber" {
		t.Errorf("got %v, want ErrTagInvalid on discnumber", err)
	}
}

func TestBuildTagBagRejectsMissingTrackNumber(t *testing.T) {
	if _, err := buildTagBag("a.flac", []string{"ALBUM=X"}); err == nil {
		t.Fatal("expected error for missing tracknumber")
	}
}

func TestBuildTagBagRejectsMalformedDate(t *testing.T) {
	_, err := buildTagBag("a.flac", []string{"TRACKNUMBER=1", "DATE=99"})
	if err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestBuildTagBagAcceptsPartialDates(t *testing.T) {
	for _, date := range []string{"1999", "1999-11", "1999-11-16"} {
		bag, err := buildTagBag("a.flac", []string{"TRACKNUMBER=1", "DATE=" + date})
		if err != nil {
			t.Fatalf("date %q: unexpected error: %v", date, err)
		}
		if bag.Date != date {
			t.Errorf("Date = %q, want %q", bag.Date, date)
		}
	}
}

func TestEffectiveOriginalDateFallsBackToDate(t *testing.T) {
	bag, err := buildTagBag("a.flac", []string{"TRACKNUMBER=1", "DATE=1999-11-16"})
	if err != nil {
		t.Fatalf("buildTagBag: %v", err)
	}
	if got := bag.EffectiveOriginalDate(); got != "1999-11-16" {
		t.Errorf("EffectiveOriginalDate() = %q, want fallback to Date", got)
	}

	bag, err = buildTagBag("a.flac", []string{"TRACKNUMBER=1", "DATE=1999", "ORIGINALDATE=1998"})
	if err != nil {
		t.Fatalf("buildTagBag: %v", err)
	}
	if got := bag.EffectiveOriginalDate(); got != "1998" {
		t.Errorf("EffectiveOriginalDate() = %q, want ORIGINALDATE to take priority", got)
	}
}

func TestBuildTagBagRepeatableAlbumArtistIDs(t *testing.T) {
	bag, err := buildTagBag("a.flac", []string{
		"TRACKNUMBER=1",
		"MUSICBRAINZ_ALBUMARTISTID=11111111-1111-1111-1111-111111111111",
		"MUSICBRAINZ_ALBUMARTISTID=22222222-2222-2222-2222-222222222222",
	})
	if err != nil {
		t.Fatalf("buildTagBag: %v", err)
	}
	if len(bag.MusicBrainzAlbumArtistIDs) != 2 {
		t.Fatalf("MusicBrainzAlbumArtistIDs = %v, want 2 entries", bag.MusicBrainzAlbumArtistIDs)
	}
}

func TestParseStreamInfo(t *testing.T) {
	// 44100 Hz, 2 channels, 16 bits per sample, 1000 total samples,
	// hand-packed per the STREAMINFO bit layout.
	data := make([]byte, 34)
	var packed uint64
	packed |= uint64(44100) << 44
	packed |= uint64(2-1) << 41
	packed |= uint64(16-1) << 36
	packed |= uint64(1000)
	for i := 0; i < 8; i++ {
		data[10+i] = byte(packed >> uint(56-8*i))
	}
	info, ok := parseStreamInfo(data)
	if !ok {
		t.Fatal("parseStreamInfo reported not ok")
	}
	if info.SampleRateHz != 44100 || info.ChannelCount != 2 || info.BitsPerSample != 16 || info.TotalSamples != 1000 {
		t.Errorf("got %+v", info)
	}
}
