package player

import "strings"

// StreamType is the playback kind a URL classifies as. It decides which
// backend renders the stream.
type StreamType string

const (
	TypeIframe  StreamType = "iframe"
	TypeM3U8    StreamType = "m3u8"
	TypeMP4     StreamType = "mp4"
	TypeWebM    StreamType = "webm"
	TypeTS      StreamType = "ts"
	TypeSTRM    StreamType = "strm"
	TypeMPD     StreamType = "mpd"
	TypeUnknown StreamType = "unknown"
)

// IframeMarker forces iframe playback regardless of the URL's suffix.
const IframeMarker = "iframe:"

// Classify maps a URL to its stream type, case-insensitively. The iframe
// marker wins over any suffix; anything without a known suffix is
// TypeUnknown and goes to the embed fallback backend.
func Classify(rawURL string) StreamType {
	lower := strings.ToLower(rawURL)
	if strings.Contains(lower, IframeMarker) {
		return TypeIframe
	}
	switch {
	case strings.HasSuffix(lower, ".m3u8"):
		return TypeM3U8
	case strings.HasSuffix(lower, ".mp4"):
		return TypeMP4
	case strings.HasSuffix(lower, ".webm"):
		return TypeWebM
	case strings.HasSuffix(lower, ".ts"):
		return TypeTS
	case strings.HasSuffix(lower, ".strm"):
		return TypeSTRM
	case strings.HasSuffix(lower, ".mpd"):
		return TypeMPD
	}
	return TypeUnknown
}

// StripIframeMarker removes the iframe marker from a URL, leaving the
// embeddable target.
func StripIframeMarker(rawURL string) string {
	return strings.TrimSpace(strings.Replace(rawURL, IframeMarker, "", 1))
}
