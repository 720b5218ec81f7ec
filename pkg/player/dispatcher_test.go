package player

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/forestrock/webtv/pkg/xmltv"
)

type fakeResolver struct {
	calls  int
	result string
}

func (f *fakeResolver) Resolve(target string) (string, bool) {
	f.calls++
	if f.result == "" {
		return "", false
	}
	return f.result + target, true
}

const mediaManifest = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:10.0,
seg0.ts
#EXT-X-ENDLIST
`

func TestPlayHLSWithEngine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		w.Write([]byte(mediaManifest))
	}))
	defer server.Close()

	d := NewDispatcher(Options{Env: Environment{HLSEngine: true}})

	url := server.URL + "/live.m3u8"
	if err := d.Play(url, "ERT1", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	state := d.Surface().State()
	if state.Element != ElementVideo {
		t.Errorf("Expected video element, got %s", state.Element)
	}
	if state.Engine != EngineHLS {
		t.Errorf("Expected hls engine, got %s", state.Engine)
	}
	if state.Source != url {
		t.Errorf("Unexpected source: %s", state.Source)
	}
	if !state.Playing {
		t.Error("Expected playback to start once the manifest parsed")
	}
	if state.Label != "ERT1" {
		t.Errorf("Unexpected label: %s", state.Label)
	}
}

func TestPlayHLSNativeCapability(t *testing.T) {
	d := NewDispatcher(Options{Env: Environment{NativeHLS: true}})

	if err := d.Play("http://example.invalid/live.m3u8", "ERT1", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Native capability wins: no engine, no manifest fetch.
	state := d.Surface().State()
	if state.Engine != EngineNative || state.Element != ElementVideo || !state.Playing {
		t.Errorf("Unexpected state: %+v", state)
	}
}

func TestPlayHLSEngineErrorIsNonFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	d := NewDispatcher(Options{Env: Environment{HLSEngine: true}})

	if err := d.Play(server.URL+"/live.m3u8", "ERT1", ""); err != nil {
		t.Fatalf("Engine errors must not fail the dispatch: %v", err)
	}

	state := d.Surface().State()
	if state.Playing {
		t.Error("Playback must not be marked started when the manifest failed")
	}
	if state.Engine != EngineHLS {
		t.Errorf("Expected hls engine to stay attached, got %s", state.Engine)
	}
}

func TestPlayNative(t *testing.T) {
	d := NewDispatcher(Options{})

	if err := d.Play("http://example.invalid/movie.mp4", "Movie", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	state := d.Surface().State()
	if state.Element != ElementVideo || state.Engine != EngineNative || state.Kind != TypeMP4 {
		t.Errorf("Unexpected state: %+v", state)
	}
}

func TestPlayIframeTearsDownVideo(t *testing.T) {
	d := NewDispatcher(Options{})

	if err := d.Play("http://example.invalid/movie.mp4", "Movie", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if err := d.Play("iframe:http://example.invalid/embed", "Embed", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Exactly one playback surface is active at any time.
	state := d.Surface().State()
	if state.Element != ElementFrame {
		t.Errorf("Expected frame element, got %s", state.Element)
	}
	if state.Source != "http://example.invalid/embed" {
		t.Errorf("Expected marker stripped from source, got %s", state.Source)
	}
}

func TestPlayStrmIndirection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("http://example.invalid/real.mp4\n"))
	}))
	defer server.Close()

	d := NewDispatcher(Options{})

	if err := d.Play(server.URL+"/link.strm", "Movie", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	// Exactly one level of indirection, resolved to native playback.
	state := d.Surface().State()
	if state.Kind != TypeMP4 {
		t.Errorf("Expected the fetched URL to classify as mp4, got %s", state.Kind)
	}
	if state.Source != "http://example.invalid/real.mp4" {
		t.Errorf("Unexpected source: %s", state.Source)
	}
}

func TestPlayStrmCycleFailsClosed(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A .strm that points at another .strm, forever.
		w.Write([]byte(server.URL + "/loop.strm\n"))
	}))
	defer server.Close()

	d := NewDispatcher(Options{})

	if err := d.Play(server.URL+"/loop.strm", "Loop", ""); err == nil {
		t.Fatal("Expected the indirection bound to fail the dispatch")
	}
}

func TestPlayUsesResolvedProxyURL(t *testing.T) {
	resolver := &fakeResolver{result: "https://relay.example/"}
	d := NewDispatcher(Options{Resolver: resolver})

	if err := d.Play("http://example.invalid/movie.mp4", "Movie", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if resolver.calls != 1 {
		t.Errorf("Expected 1 resolver call, got %d", resolver.calls)
	}
	state := d.Surface().State()
	if state.Source != "https://relay.example/http://example.invalid/movie.mp4" {
		t.Errorf("Expected the proxied URL on the surface, got %s", state.Source)
	}
}

func TestPlayFallsBackToOriginalURL(t *testing.T) {
	resolver := &fakeResolver{} // no proxy answers
	d := NewDispatcher(Options{Resolver: resolver})

	if err := d.Play("http://example.invalid/movie.mp4", "Movie", ""); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	state := d.Surface().State()
	if state.Source != "http://example.invalid/movie.mp4" {
		t.Errorf("Expected the original URL on the surface, got %s", state.Source)
	}
}

func TestPlayRefreshesGuide(t *testing.T) {
	guideXML := `<tv>
  <programme channel="ert1.gr" start="20240601180000 +0300" stop="20240601190000 +0300">
    <title>Evening News</title>
  </programme>
  <programme channel="ert1.gr" start="20240601190000 +0300" stop="20240601200000 +0300">
    <title>Documentary</title>
  </programme>
</tv>`
	guide, err := xmltv.Load(guideXML)
	if err != nil {
		t.Fatalf("Failed to load guide: %v", err)
	}

	d := NewDispatcher(Options{Guide: guide})
	d.now = func() time.Time { return time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC) }

	if err := d.Play("http://example.invalid/ert1.mp4", "ERT1", "ert1.gr"); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	info := d.Surface().State().Guide
	if info == nil {
		t.Fatal("Expected guide context on the surface")
	}
	if info.Current == nil || info.Current.Title != "Evening News" {
		t.Errorf("Unexpected current programme: %+v", info.Current)
	}
	if info.Elapsed != 0.5 {
		t.Errorf("Expected elapsed 0.5, got %v", info.Elapsed)
	}
	if len(info.Next) != 1 || info.Next[0].Title != "Documentary" {
		t.Errorf("Unexpected next programmes: %+v", info.Next)
	}
}

func TestPlayEmptyURL(t *testing.T) {
	d := NewDispatcher(Options{})
	if err := d.Play("  ", "Nothing", ""); err == nil {
		t.Error("Expected an error for an empty URL")
	}
}
