package m3uparser

// Fallbacks for channels without complete metadata, matching what the
// web UI shows for them.
const (
	UnknownChannelName = "Unknown Channel"
	DefaultLogoURL     = "default_logo.png"
)

// ChannelEntry is the playable view of an M3U entry: one per
// EXTINF+URI pair, in playlist order. Names may repeat.
type ChannelEntry struct {
	Name      string `json:"name"`
	StreamURL string `json:"streamUrl"`
	EpgID     string `json:"epgId,omitempty"`
	LogoURL   string `json:"logoUrl"`
}

// Channel converts an entry to its playable form. The display name after
// the comma wins, then the tvg-name attribute, then a placeholder.
func (entry *M3UEntry) Channel() ChannelEntry {
	name := entry.Title
	if name == "" {
		name = entry.Attrs.Get("tvg-name")
	}
	if name == "" {
		name = UnknownChannelName
	}

	logo := entry.Attrs.Get("tvg-logo")
	if logo == "" {
		logo = DefaultLogoURL
	}

	return ChannelEntry{
		Name:      name,
		StreamURL: entry.URI,
		EpgID:     entry.Attrs.Get("tvg-id"),
		LogoURL:   logo,
	}
}

// Channels returns one ChannelEntry per playlist entry, in source order.
func (playlist *M3UPlaylist) Channels() []ChannelEntry {
	channels := make([]ChannelEntry, 0, len(playlist.Entries))
	for i := range playlist.Entries {
		channels = append(channels, playlist.Entries[i].Channel())
	}
	return channels
}
