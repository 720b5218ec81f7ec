package xmltv

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/grafana/regexp"
)

// NoDescription is shown for programmes without a <desc> element.
const NoDescription = "No description available"

// Programme is a single guide interval for a channel. Start and Stop are
// absolute UTC instants and Start < Stop always holds for stored entries.
type Programme struct {
	ChannelID string    `json:"channelId"`
	Start     time.Time `json:"start"`
	Stop      time.Time `json:"stop"`
	Title     string    `json:"title"`
	Desc      string    `json:"description"`
}

type xmlTV struct {
	XMLName    xml.Name       `xml:"tv"`
	Programmes []xmlProgramme `xml:"programme"`
}

type xmlProgramme struct {
	Channel string `xml:"channel,attr"`
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Title   string `xml:"title"`
	Desc    string `xml:"desc"`
}

// ParseTime parses the XMLTV timestamp format "YYYYMMDDHHMMSS ±HHMM" and
// normalizes it to UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) != 20 || value[14] != ' ' {
		return time.Time{}, fmt.Errorf("invalid XMLTV timestamp %q", value)
	}
	ts, err := time.Parse("20060102150405 -0700", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid XMLTV timestamp %q: %w", value, err)
	}
	return ts.UTC(), nil
}

// decode parses an XMLTV document into programme intervals.
//
// Entries without a <title> are not real programmes and are dropped.
// Entries with malformed timestamps or an empty interval are dropped with
// a warning; a bad record never aborts the rest of the document.
func decode(xmlText string) ([]Programme, error) {
	var doc xmlTV
	if err := xml.Unmarshal([]byte(xmlText), &doc); err != nil {
		return nil, fmt.Errorf("xmltv: %w", err)
	}

	programmes := make([]Programme, 0, len(doc.Programmes))
	for _, p := range doc.Programmes {
		title := strings.TrimSpace(p.Title)
		if title == "" {
			continue
		}

		start, err := ParseTime(p.Start)
		if err != nil {
			logger.Warnf("xmltv: skipping programme %q on %s: %v", title, p.Channel, err)
			continue
		}
		stop, err := ParseTime(p.Stop)
		if err != nil {
			logger.Warnf("xmltv: skipping programme %q on %s: %v", title, p.Channel, err)
			continue
		}
		if !start.Before(stop) {
			logger.Warnf("xmltv: skipping programme %q on %s: start is not before stop", title, p.Channel)
			continue
		}

		desc := strings.TrimSpace(p.Desc)
		if desc == "" {
			desc = NoDescription
		}

		programmes = append(programmes, Programme{
			ChannelID: p.Channel,
			Start:     start,
			Stop:      stop,
			Title:     title,
			Desc:      desc,
		})
	}

	return programmes, nil
}

var bracketTags = regexp.MustCompile(`\s*\[.*?\]\s*`)

// DisplayTitle returns the programme title with bracketed tags removed,
// the way the sidebar shows it.
func (p Programme) DisplayTitle() string {
	title := bracketTags.ReplaceAllString(p.Title, " ")
	title = strings.ReplaceAll(title, "[", "")
	title = strings.ReplaceAll(title, "]", "")
	return strings.TrimSpace(title)
}

// Progress returns the elapsed and remaining fractions of the interval at
// the given instant, both clamped to [0,1].
func (p Programme) Progress(now time.Time) (elapsed, remaining float64) {
	total := p.Stop.Sub(p.Start)
	if total <= 0 {
		return 0, 0
	}
	elapsed = float64(now.Sub(p.Start)) / float64(total)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > 1 {
		elapsed = 1
	}
	return elapsed, 1 - elapsed
}
