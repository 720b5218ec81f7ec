package m3uparser

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
)

// M3UTag is a single #TAG:VALUE line attached to an entry or playlist.
type M3UTag struct {
	Tag   string
	Value string
}

// M3UEntry represents a single entry in the M3U file: one #EXTINF line
// plus the URI line that follows it.
type M3UEntry struct {
	URI      string  `json:"uri"`      // The URI of the media.
	Duration int     `json:"duration"` // The duration of the media in seconds (if available).
	Title    string  `json:"title"`    // The display name after the comma (if available).
	Attrs    Attrs   `json:"attrs"`    // Attributes extracted from the EXTINF line (tvg-id, tvg-logo, ...).
	Tags     []M3UTag `json:"tags"`    // Additional tags between the EXTINF line and the URI.
}

// M3UPlaylist represents the parsed M3U playlist.
type M3UPlaylist struct {
	Entries []M3UEntry // The list of media entries in the playlist, in source order.
	Tags    []M3UTag   // Tags that precede any entry.
}

// DecodeFromReader parses M3U text in a single line-sequential pass.
//
// An entry is emitted for every #EXTINF line followed by a non-empty,
// non-comment line. A URI line without a preceding #EXTINF is skipped,
// never fatal.
func DecodeFromReader(r io.Reader) (*M3UPlaylist, error) {

	playlist := &M3UPlaylist{
		Entries: make([]M3UEntry, 0),
		Tags:    make([]M3UTag, 0),
	}

	var currentEntry *M3UEntry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if strings.HasPrefix(line, "#") {
			tag, err := parseTag(line)
			if err != nil {
				// Plain comment, not a tag
				continue
			}

			if tag.Tag == "EXTM3U" {
				continue
			}

			if tag.Tag == "EXTINF" {
				currentEntry = &M3UEntry{}
				parts := strings.SplitN(tag.Value, ",", 2)
				if len(parts) > 0 {
					currentEntry.Duration = parseDuration(parts[0])
					currentEntry.Attrs = ParseAttrs(parts[0])
				}
				if len(parts) > 1 {
					currentEntry.Title = strings.TrimSpace(parts[1])
				}
				continue
			}

			if currentEntry != nil {
				currentEntry.Tags = append(currentEntry.Tags, tag)
			} else {
				playlist.Tags = append(playlist.Tags, tag)
			}

			continue
		}

		// URI line: only valid when metadata was seen, then the
		// metadata is consumed and cleared for the next entry.
		if currentEntry != nil {
			currentEntry.URI = line
			playlist.Entries = append(playlist.Entries, *currentEntry)
			currentEntry = nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return playlist, nil
}

// DecodeFromString parses M3U text held in memory.
func DecodeFromString(data string) (*M3UPlaylist, error) {
	return DecodeFromReader(strings.NewReader(data))
}

// DecodeFromFile parses an M3U file on disk.
func DecodeFromFile(path string) (*M3UPlaylist, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return DecodeFromReader(file)
}

// parseDuration parses the duration field from the EXTINF tag. Live
// streams carry -1, which is also the value for anything unparsable.
// The duration may be followed by attributes, which are ignored here.
func parseDuration(durationStr string) int {
	fields := strings.Fields(strings.TrimSpace(durationStr))
	if len(fields) == 0 {
		return -1
	}
	duration, err := strconv.Atoi(fields[0])
	if err != nil {
		return -1
	}
	return duration
}

// parseTag parses a line that starts with '#' and extracts the tag name and value.
func parseTag(line string) (M3UTag, error) {
	line = strings.TrimPrefix(line, "#")
	parts := strings.SplitN(line, ":", 2)
	if len(parts[0]) == 0 {
		return M3UTag{}, errors.New("invalid tag")
	}
	if !isDirective(parts[0]) {
		return M3UTag{}, errors.New("unknown tag")
	}
	if len(parts) == 1 {
		return M3UTag{parts[0], ""}, nil
	}
	return M3UTag{parts[0], parts[1]}, nil
}

func isDirective(tag string) bool {
	if strings.HasPrefix(tag, "EXT-X-") {
		return true
	}
	switch tag {
	case "EXTM3U", "EXTINF", "PLAYLIST", "EXTGRP", "EXTALB", "EXTART",
		"EXTGENRE", "EXTIMG", "EXTVLCOPT", "KODIPROP":
		return true
	}
	return false
}

func (entry *M3UEntry) String() string {
	var result string
	result += "#EXTINF:" + entry.extinfValue() + "\n"
	for _, tag := range entry.Tags {
		result += "#" + tag.Tag + ":" + tag.Value + "\n"
	}
	result += entry.URI + "\n"
	return strings.Trim(result, "\n")
}

func (entry *M3UEntry) extinfValue() string {
	value := strconv.Itoa(entry.Duration)
	if attrs := entry.Attrs.String(); attrs != "" {
		value += " " + attrs
	}
	return value + "," + entry.Title
}

func (playlist *M3UPlaylist) String() string {
	var result string
	result += "#EXTM3U\n"
	for _, tag := range playlist.Tags {
		result += "#" + tag.Tag + ":" + tag.Value + "\n"
	}
	for _, entry := range playlist.Entries {
		result += entry.String() + "\n"
	}
	return strings.Trim(result, "\n")
}
