package xmltv

import (
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

// DefaultUpcomingLimit caps "what airs next" queries the way the sidebar
// shows them.
const DefaultUpcomingLimit = 4

// Store maps channel ids to their programme timeline, ordered by start
// time as the source document lists them. A Store is immutable once
// loaded; a refresh builds a new Store and swaps it in at the caller.
type Store struct {
	programmes *xsync.MapOf[string, []Programme]
	count      int
}

// Load parses an XMLTV document into a fresh Store. Bad records are
// dropped individually; only an unreadable document fails as a whole.
func Load(xmlText string) (*Store, error) {
	parsed, err := decode(xmlText)
	if err != nil {
		return nil, err
	}

	store := &Store{
		programmes: xsync.NewMapOf[string, []Programme](),
		count:      len(parsed),
	}
	for _, p := range parsed {
		timeline, _ := store.programmes.Load(p.ChannelID)
		store.programmes.Store(p.ChannelID, append(timeline, p))
	}
	return store, nil
}

// NewStore returns an empty store, useful before any EPG has been fetched.
func NewStore() *Store {
	return &Store{programmes: xsync.NewMapOf[string, []Programme]()}
}

// ProgrammeCount returns the number of stored intervals.
func (s *Store) ProgrammeCount() int {
	return s.count
}

// ChannelCount returns the number of channels with at least one interval.
func (s *Store) ChannelCount() int {
	return s.programmes.Size()
}

// CurrentProgramme returns the interval containing now for the channel,
// if any. Gaps between intervals, or instants before the first or after
// the last interval, return false.
func (s *Store) CurrentProgramme(channelID string, now time.Time) (Programme, bool) {
	timeline, ok := s.programmes.Load(channelID)
	if !ok {
		return Programme{}, false
	}
	for _, p := range timeline {
		if !now.Before(p.Start) && now.Before(p.Stop) {
			return p, true
		}
	}
	return Programme{}, false
}

// Upcoming returns intervals starting after now, in timeline order,
// capped at limit (DefaultUpcomingLimit when limit <= 0).
func (s *Store) Upcoming(channelID string, now time.Time, limit int) []Programme {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	timeline, ok := s.programmes.Load(channelID)
	if !ok {
		return nil
	}
	upcoming := make([]Programme, 0, limit)
	for _, p := range timeline {
		if p.Start.After(now) {
			upcoming = append(upcoming, p)
			if len(upcoming) == limit {
				break
			}
		}
	}
	return upcoming
}

// ResolveChannel maps a channel id or display label to a stored channel
// key, case-insensitively. Exact matches win over substring matches.
func (s *Store) ResolveChannel(nameOrID string) (string, bool) {
	if nameOrID == "" {
		return "", false
	}
	if _, ok := s.programmes.Load(nameOrID); ok {
		return nameOrID, true
	}

	needle := strings.ToLower(nameOrID)
	var partial string
	s.programmes.Range(func(key string, _ []Programme) bool {
		lower := strings.ToLower(key)
		if lower == needle {
			partial = key
			return false
		}
		if partial == "" && strings.Contains(lower, needle) {
			partial = key
		}
		return true
	})
	return partial, partial != ""
}
