package m3uparser

import (
	"testing"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="ert1.gr" tvg-name="ERT1" tvg-logo="https://logos.example/ert1.png" group-title="News",ERT1
http://example.com/ert1.m3u8
#EXTVLCOPT:http-user-agent=Firefox
#EXTINF:-1 tvg-id="skai.gr",SKAI
http://example.com/skai.m3u8
#EXTINF:-1,
http://example.com/mystery.ts
`

func TestDecodeFromString(t *testing.T) {
	playlist, err := DecodeFromString(samplePlaylist)
	if err != nil {
		t.Fatalf("Failed to parse M3U text: %v", err)
	}

	expectedNumEntries := 3
	if len(playlist.Entries) != expectedNumEntries {
		t.Fatalf("Unexpected number of entries. Expected: %d, Got: %d", expectedNumEntries, len(playlist.Entries))
	}

	expectedURI := "http://example.com/ert1.m3u8"
	expectedDuration := -1
	expectedTitle := "ERT1"
	if playlist.Entries[0].URI != expectedURI || playlist.Entries[0].Duration != expectedDuration || playlist.Entries[0].Title != expectedTitle {
		t.Errorf("Unexpected entry. Expected: %s, %d, %s, Got: %s, %d, %s",
			expectedURI, expectedDuration, expectedTitle,
			playlist.Entries[0].URI, playlist.Entries[0].Duration, playlist.Entries[0].Title)
	}

	if got := playlist.Entries[0].Attrs.Get("tvg-id"); got != "ert1.gr" {
		t.Errorf("Unexpected tvg-id. Expected: ert1.gr, Got: %s", got)
	}
	if got := playlist.Entries[0].Attrs.Get("group-title"); got != "News" {
		t.Errorf("Unexpected group-title. Expected: News, Got: %s", got)
	}
}

func TestDecodeEntryCountMatchesURLLines(t *testing.T) {
	playlist, err := DecodeFromString(samplePlaylist)
	if err != nil {
		t.Fatalf("Failed to parse M3U text: %v", err)
	}

	// One entry per EXTINF+URL pair: the count must equal the number of
	// lines not prefixed with '#'.
	urlLines := 3
	if len(playlist.Entries) != urlLines {
		t.Errorf("Expected %d entries, got %d", urlLines, len(playlist.Entries))
	}
}

func TestDecodeSkipsOrphanURLs(t *testing.T) {
	text := "#EXTM3U\nhttp://example.com/orphan.m3u8\n#EXTINF:-1,Real\nhttp://example.com/real.m3u8\n"
	playlist, err := DecodeFromString(text)
	if err != nil {
		t.Fatalf("Failed to parse M3U text: %v", err)
	}

	if len(playlist.Entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(playlist.Entries))
	}
	if playlist.Entries[0].URI != "http://example.com/real.m3u8" {
		t.Errorf("Unexpected URI: %s", playlist.Entries[0].URI)
	}
}

func TestDecodeMetadataClearedBetweenEntries(t *testing.T) {
	text := "#EXTINF:-1 tvg-logo=\"a.png\",First\nhttp://example.com/a.ts\n#EXTINF:-1,Second\nhttp://example.com/b.ts\n"
	playlist, err := DecodeFromString(text)
	if err != nil {
		t.Fatalf("Failed to parse M3U text: %v", err)
	}

	if len(playlist.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(playlist.Entries))
	}
	if playlist.Entries[1].Attrs.Get("tvg-logo") != "" {
		t.Errorf("Metadata leaked from the first entry into the second")
	}
}

func TestParseDuration(t *testing.T) {
	if got := parseDuration("123"); got != 123 {
		t.Errorf("Unexpected duration. Expected: 123, Got: %d", got)
	}
	if got := parseDuration(`-1 tvg-id="x"`); got != -1 {
		t.Errorf("Unexpected duration. Expected: -1, Got: %d", got)
	}
	if got := parseDuration("garbage"); got != -1 {
		t.Errorf("Unexpected duration. Expected: -1, Got: %d", got)
	}
}

func TestParseTag(t *testing.T) {
	line := "#EXTINF:123,Sample Title"
	expectedTagName := "EXTINF"
	expectedTagValue := "123,Sample Title"
	tag, err := parseTag(line)
	if err != nil {
		t.Errorf("Error parsing tag: %v", err)
	}

	if tag.Tag != expectedTagName || tag.Value != expectedTagValue {
		t.Errorf("Unexpected tag. Expected: %s=%s, Got: %s=%s", expectedTagName, expectedTagValue, tag.Tag, tag.Value)
	}
}

func TestParseTagRejectsComments(t *testing.T) {
	if _, err := parseTag("# just a comment"); err == nil {
		t.Error("Error should not be nil")
	}
}
