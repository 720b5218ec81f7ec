package player

import (
	"sync"

	"github.com/forestrock/webtv/pkg/xmltv"
)

// Element identifies which playback element of the page is visible.
type Element string

const (
	ElementNone  Element = "none"
	ElementVideo Element = "video"
	ElementFrame Element = "frame"
	ElementEmbed Element = "embed"
)

// Engine identifies what drives the visible element.
type Engine string

const (
	EngineNone   Engine = ""
	EngineNative Engine = "native"
	EngineHLS    Engine = "hls"
	EngineDash   Engine = "dash"
	EngineEmbed  Engine = "embed"
	EngineFrame  Engine = "frame"
)

// TuneInfo is the best-effort guide context of the playing channel.
type TuneInfo struct {
	ChannelID string            `json:"channelId"`
	Current   *xmltv.Programme  `json:"current,omitempty"`
	Elapsed   float64           `json:"elapsed"`
	Remaining float64           `json:"remaining"`
	Next      []xmltv.Programme `json:"next,omitempty"`
}

// SurfaceState is a snapshot of the single playback surface.
type SurfaceState struct {
	Element Element    `json:"element"`
	Engine  Engine     `json:"engine"`
	Kind    StreamType `json:"kind"`
	Source  string     `json:"source"`
	Label   string     `json:"label"`
	Playing bool       `json:"playing"`
	Guide   *TuneInfo  `json:"guide,omitempty"`
}

// Surface models the page's one playback surface. At most one element is
// active at any time: every tune tears the previous one down before the
// new backend attaches. Concurrent tunes are not ordered against each
// other; the last writer wins.
type Surface struct {
	mu    sync.Mutex
	state SurfaceState
}

func NewSurface() *Surface {
	return &Surface{state: SurfaceState{Element: ElementNone}}
}

// Reset stops and hides whatever was active: source cleared, playback
// paused, frame and embed hidden, the bare video element visible again.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SurfaceState{Element: ElementVideo}
}

// attach makes one element active with the given engine and source.
func (s *Surface) attach(element Element, engine Engine, kind StreamType, source, label string, playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	guide := s.state.Guide
	s.state = SurfaceState{
		Element: element,
		Engine:  engine,
		Kind:    kind,
		Source:  source,
		Label:   label,
		Playing: playing,
		Guide:   guide,
	}
}

// setPlaying flips the playing flag, e.g. once an HLS manifest parsed.
func (s *Surface) setPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Playing = playing
}

// setGuide records the guide context for the current tune.
func (s *Surface) setGuide(info *TuneInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Guide = info
}

// State returns a copy of the current surface state.
func (s *Surface) State() SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
