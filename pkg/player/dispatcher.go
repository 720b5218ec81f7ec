package player

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/metrics"
	"github.com/forestrock/webtv/pkg/xmltv"
)

// maxIndirection bounds .strm chains. The format expects one level of
// indirection; anything deeper is treated as malformed and fails closed.
const maxIndirection = 3

// maxIndirectBody caps how much of a .strm body is read. The file is a
// single URL line.
const maxIndirectBody = 4 * 1024

// ProxyResolver finds a CORS-relayed URL for a target, if any proxy
// answers.
type ProxyResolver interface {
	Resolve(target string) (string, bool)
}

// Environment describes the playback capabilities of the page the
// surface lives in.
type Environment struct {
	NativeHLS bool // the media element plays HLS manifests itself
	HLSEngine bool // a script-level HLS engine can be attached
}

// Options configure a Dispatcher.
type Options struct {
	Resolver ProxyResolver // nil disables proxy resolution
	Guide    *xmltv.Store  // nil disables guide refresh on tune
	Client   *http.Client  // nil gets a default client
	Env      Environment
}

// Dispatcher is the playback orchestration core: it classifies a URL,
// routes it through a CORS proxy when one answers, tears down the
// previous playback surface and delegates to the matching backend.
//
// Every Play starts from the "nothing playing" state; no state survives
// between invocations.
type Dispatcher struct {
	surface  *Surface
	resolver ProxyResolver
	client   *http.Client
	env      Environment

	mu    sync.RWMutex
	guide *xmltv.Store

	now func() time.Time
}

func NewDispatcher(opts Options) *Dispatcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Dispatcher{
		surface:  NewSurface(),
		resolver: opts.Resolver,
		client:   client,
		env:      opts.Env,
		guide:    opts.Guide,
		now:      time.Now,
	}
}

// Surface exposes the playback surface for state queries.
func (d *Dispatcher) Surface() *Surface {
	return d.surface
}

// SetGuide swaps in a freshly loaded guide store.
func (d *Dispatcher) SetGuide(guide *xmltv.Store) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guide = guide
}

func (d *Dispatcher) guideStore() *xmltv.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.guide
}

// Play tunes the surface to the given URL. Playback failures inside a
// backend degrade or are logged; the returned error is reserved for
// requests that cannot be dispatched at all (empty URL, indirection
// bound exceeded, unreadable .strm).
func (d *Dispatcher) Play(rawURL, label, epgID string) error {
	return d.play(rawURL, label, epgID, 0)
}

func (d *Dispatcher) play(rawURL, label, epgID string, depth int) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return fmt.Errorf("player: empty stream URL")
	}

	kind := Classify(rawURL)
	metrics.PlaybackDispatches.WithLabelValues(string(kind)).Inc()
	logger.Debugf("player: dispatching %s as %s", rawURL, kind)

	playURL := rawURL
	if d.resolver != nil {
		if proxied, ok := d.resolver.Resolve(rawURL); ok {
			playURL = proxied
		}
	}

	// Indirection resolves to a new URL before anything is torn down.
	if kind == TypeSTRM {
		return d.playIndirect(playURL, label, epgID, depth)
	}

	d.surface.Reset()

	switch kind {
	case TypeM3U8:
		d.playHLS(playURL, label)
	case TypeMP4, TypeWebM, TypeTS:
		d.playNative(kind, playURL, label)
	case TypeIframe:
		d.playIframe(playURL, label)
	case TypeMPD:
		d.playDash(playURL, label)
	default:
		d.playEmbedFallback(playURL, label)
	}

	d.refreshGuide(label, epgID)
	return nil
}

// playNative assigns the source directly to the media element.
func (d *Dispatcher) playNative(kind StreamType, url, label string) {
	d.surface.attach(ElementVideo, EngineNative, kind, url, label, true)
}

// playIframe strips the marker and activates the embedded frame; the
// media element stays paused and hidden.
func (d *Dispatcher) playIframe(url, label string) {
	d.surface.attach(ElementFrame, EngineFrame, TypeIframe, StripIframeMarker(url), label, true)
}

// playEmbedFallback hands anything unplayable elsewhere to the embedded
// last-resort player. Unknown streams are content-sniffed first so a
// manifest hiding behind an extensionless URL still reaches the right
// backend.
func (d *Dispatcher) playEmbedFallback(url, label string) {
	switch kind := d.sniff(url); kind {
	case TypeM3U8:
		d.playHLS(url, label)
	case TypeMPD:
		d.playDash(url, label)
	case TypeMP4, TypeWebM, TypeTS:
		d.playNative(kind, url, label)
	default:
		d.surface.attach(ElementEmbed, EngineEmbed, TypeUnknown, url, label, true)
	}
}

// playIndirect fetches a .strm indirection file and recurses with its
// content as the new URL.
func (d *Dispatcher) playIndirect(url, label, epgID string, depth int) error {
	if depth >= maxIndirection {
		return fmt.Errorf("player: indirection deeper than %d levels for %s", maxIndirection, url)
	}

	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("player: fetching indirection file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("player: fetching indirection file: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIndirectBody))
	if err != nil {
		return fmt.Errorf("player: reading indirection file: %w", err)
	}

	target := strings.TrimSpace(string(body))
	if i := strings.IndexByte(target, '\n'); i >= 0 {
		target = strings.TrimSpace(target[:i])
	}
	if target == "" {
		return fmt.Errorf("player: empty indirection file at %s", url)
	}

	return d.play(target, label, epgID, depth+1)
}

// refreshGuide records now/next for the tuned channel on the surface.
// Best effort: a missing store or unknown channel leaves the surface
// without guide context, never fails the tune.
func (d *Dispatcher) refreshGuide(label, epgID string) {
	guide := d.guideStore()
	if guide == nil {
		return
	}

	key := epgID
	if key == "" {
		key = label
	}
	channelID, ok := guide.ResolveChannel(key)
	if !ok {
		d.surface.setGuide(nil)
		return
	}

	now := d.now()
	info := &TuneInfo{ChannelID: channelID}
	if current, ok := guide.CurrentProgramme(channelID, now); ok {
		info.Current = &current
		info.Elapsed, info.Remaining = current.Progress(now)
	}
	info.Next = guide.Upcoming(channelID, now, xmltv.DefaultUpcomingLimit)
	d.surface.setGuide(info)
}
