package player

import (
	"fmt"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/metrics"

	"github.com/grafov/m3u8"
)

// playHLS renders an HLS stream. Native adaptive playback wins when the
// environment has it; otherwise a script-level engine is attached and
// playback starts once the manifest parses. Engine errors are logged,
// never fatal, and with no engine at all the source is assigned to the
// media element anyway as a last-resort attempt.
func (d *Dispatcher) playHLS(url, label string) {
	if d.env.NativeHLS {
		d.surface.attach(ElementVideo, EngineNative, TypeM3U8, url, label, true)
		return
	}

	if d.env.HLSEngine {
		d.surface.attach(ElementVideo, EngineHLS, TypeM3U8, url, label, false)
		if err := d.loadManifest(url); err != nil {
			logger.Errorf("player: hls engine: %v", err)
			metrics.PlaybackErrors.WithLabelValues(string(EngineHLS)).Inc()
			return
		}
		d.surface.setPlaying(true)
		return
	}

	logger.Warnf("player: HLS not supported, assigning source directly")
	d.surface.attach(ElementVideo, EngineNative, TypeM3U8, url, label, true)
}

// loadManifest fetches and decodes the HLS manifest, master or media.
// This is the engine's "manifest parsed" gate.
func (d *Dispatcher) loadManifest(url string) error {
	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("loading manifest %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("loading manifest %s: status %d", url, resp.StatusCode)
	}

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return fmt.Errorf("decoding manifest %s: %w", url, err)
	}

	switch listType {
	case m3u8.MASTER:
		master := playlist.(*m3u8.MasterPlaylist)
		logger.Debugf("player: manifest parsed, %d variants", len(master.Variants))
	case m3u8.MEDIA:
		media := playlist.(*m3u8.MediaPlaylist)
		logger.Debugf("player: manifest parsed, %d segments", media.Count())
	}
	return nil
}
