package player

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/metrics"

	"github.com/elnormous/contenttype"
	xsd "github.com/unki2aut/go-xsd-types"
)

// mpdManifest is the slice of an MPEG-DASH manifest the player needs to
// accept a stream: at least one period, durations well-formed.
type mpdManifest struct {
	XMLName                   xml.Name      `xml:"MPD"`
	Type                      string        `xml:"type,attr"`
	MediaPresentationDuration *xsd.Duration `xml:"mediaPresentationDuration,attr"`
	MinimumUpdatePeriod       *xsd.Duration `xml:"minimumUpdatePeriod,attr"`
	Periods                   []mpdPeriod   `xml:"Period"`
}

type mpdPeriod struct {
	ID             string          `xml:"id,attr"`
	AdaptationSets []adaptationSet `xml:"AdaptationSet"`
}

type adaptationSet struct {
	MimeType        string              `xml:"mimeType,attr"`
	Representations []mpdRepresentation `xml:"Representation"`
}

type mpdRepresentation struct {
	ID        string `xml:"id,attr"`
	Bandwidth uint64 `xml:"bandwidth,attr"`
}

// playDash validates the MPD manifest before handing the stream to the
// embedded engine. A manifest that does not validate still reaches the
// embed fallback; the stream may play there regardless.
func (d *Dispatcher) playDash(url, label string) {
	if err := d.loadMPD(url); err != nil {
		logger.Errorf("player: dash: %v", err)
		metrics.PlaybackErrors.WithLabelValues(string(EngineDash)).Inc()
		d.surface.attach(ElementEmbed, EngineEmbed, TypeMPD, url, label, true)
		return
	}
	d.surface.attach(ElementEmbed, EngineDash, TypeMPD, url, label, true)
}

func (d *Dispatcher) loadMPD(url string) error {
	resp, err := d.client.Get(url)
	if err != nil {
		return fmt.Errorf("loading manifest %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("loading manifest %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading manifest %s: %w", url, err)
	}

	var manifest mpdManifest
	if err := xml.Unmarshal(body, &manifest); err != nil {
		return fmt.Errorf("decoding manifest %s: %w", url, err)
	}
	if len(manifest.Periods) == 0 {
		return fmt.Errorf("manifest %s has no periods", url)
	}
	if manifest.Type == "dynamic" && manifest.MinimumUpdatePeriod == nil {
		logger.Warnf("player: dynamic manifest %s without minimumUpdatePeriod", url)
	}
	return nil
}

// supportedMediaTypes are the content types the sniffer can map to a
// backend.
var supportedMediaTypes = []contenttype.MediaType{
	contenttype.NewMediaType("application/vnd.apple.mpegurl"),
	contenttype.NewMediaType("audio/x-mpegurl"),
	contenttype.NewMediaType("application/x-mpegurl"),
	contenttype.NewMediaType("application/dash+xml"),
	contenttype.NewMediaType("video/mp4"),
	contenttype.NewMediaType("video/webm"),
	contenttype.NewMediaType("video/mp2t"),
}

// sniff classifies an extensionless stream by the Content-Type of a
// lightweight request. Anything unrecognized stays TypeUnknown.
func (d *Dispatcher) sniff(url string) StreamType {
	resp, err := d.client.Head(url)
	if err != nil {
		return TypeUnknown
	}
	defer resp.Body.Close()

	ct := resp.Header.Get("Content-Type")
	mediaType, _, err := contenttype.GetAcceptableMediaTypeFromHeader(ct, supportedMediaTypes)
	if err != nil {
		return TypeUnknown
	}

	switch mediaType.Subtype {
	case "vnd.apple.mpegurl", "x-mpegurl":
		return TypeM3U8
	case "dash+xml":
		return TypeMPD
	case "mp4":
		return TypeMP4
	case "webm":
		return TypeWebM
	case "mp2t":
		return TypeTS
	}
	return TypeUnknown
}
