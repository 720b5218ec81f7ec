package streamserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/m3uparser"
	"github.com/forestrock/webtv/pkg/sportfeed"
	"github.com/forestrock/webtv/pkg/xmltv"

	"github.com/gorilla/mux"
)

type channelStatus struct {
	m3uparser.ChannelEntry
	Online bool `json:"online"`
}

type guideResponse struct {
	ChannelID string            `json:"channelId"`
	Current   *xmltv.Programme  `json:"current,omitempty"`
	Elapsed   float64           `json:"elapsed"`
	Remaining float64           `json:"remaining"`
	Next      []xmltv.Programme `json:"next"`
}

type sportMatch struct {
	sportfeed.MatchEntry
	Live bool `json:"live"`
}

type sportDay struct {
	Header  string       `json:"header"`
	Matches []sportMatch `json:"matches"`
}

type playRequest struct {
	URL   string `json:"url"`
	Label string `json:"label,omitempty"`
	EpgID string `json:"epgId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleChannels returns the lineup with each channel's last liveness
// verdict.
func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	channels := s.Channels()

	list := make([]channelStatus, 0, len(channels))
	for _, channel := range channels {
		list = append(list, channelStatus{
			ChannelEntry: channel,
			Online:       s.watcher.Online(channel.StreamURL),
		})
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGuide returns now/next for one channel, resolved by id or
// display name.
func (s *Server) handleGuide(w http.ResponseWriter, r *http.Request) {
	guide := s.Guide()

	channelID, ok := guide.ResolveChannel(mux.Vars(r)["channel"])
	if !ok {
		http.Error(w, "channel not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	resp := guideResponse{ChannelID: channelID}
	if current, ok := guide.CurrentProgramme(channelID, now); ok {
		resp.Current = &current
		resp.Elapsed, resp.Remaining = current.Progress(now)
	}
	resp.Next = guide.Upcoming(channelID, now, xmltv.DefaultUpcomingLimit)
	if resp.Next == nil {
		resp.Next = []xmltv.Programme{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSport returns the day-grouped match schedule. Liveness is
// evaluated against the wall clock on every request, never cached.
func (s *Server) handleSport(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	days := s.Sport()
	list := make([]sportDay, 0, len(days))
	for _, day := range days {
		matches := make([]sportMatch, 0, len(day.Matches))
		for _, match := range day.Matches {
			matches = append(matches, sportMatch{
				MatchEntry: match,
				Live:       match.Live(now),
			})
		}
		list = append(list, sportDay{Header: day.Header, Matches: matches})
	}
	writeJSON(w, http.StatusOK, list)
}

// handlePlay tunes the playback surface to the requested URL and returns
// the resulting surface state.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.dispatcher.Play(req.URL, req.Label, req.EpgID); err != nil {
		logger.Errorf("play %s: %v", req.URL, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, s.dispatcher.Surface().State())
}

// handlePlayer returns the current playback surface state.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dispatcher.Surface().State())
}

func (s *Server) handlePlaylistFile(w http.ResponseWriter, r *http.Request) {
	content, err := loadContent(s.config.Data().Playlist)
	if err != nil {
		http.Error(w, "playlist not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

func (s *Server) handleEpgFile(w http.ResponseWriter, r *http.Request) {
	content, err := loadContent(s.config.Data().Epg)
	if err != nil {
		http.Error(w, "EPG file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}
