package streamserver

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/m3uparser"
	"github.com/forestrock/webtv/pkg/metrics"
	"github.com/forestrock/webtv/pkg/sportfeed"
	"github.com/forestrock/webtv/pkg/xmltv"
)

// Reload fetches and parses the playlist, guide and sport feed, swapping
// each in atomically. A source that fails to load keeps its previous
// snapshot; only the playlist is mandatory.
func (s *Server) Reload() error {

	data := s.config.Data()

	content, err := loadContent(data.Playlist)
	if err != nil {
		return err
	}
	playlist, err := m3uparser.DecodeFromString(content)
	if err != nil {
		return err
	}
	channels := playlist.Channels()
	logger.Infof("Loaded %d channels from %s", len(channels), data.Playlist)

	s.mu.Lock()
	s.channels = channels
	s.mu.Unlock()

	s.watcher.Sweep(channels)

	if data.Epg != "" {
		if content, err := loadContent(data.Epg); err != nil {
			logger.Warnf("EPG not loaded from %s: %v", data.Epg, err)
		} else if guide, err := xmltv.Load(content); err != nil {
			logger.Warnf("EPG not parsed from %s: %v", data.Epg, err)
		} else {
			logger.Infof("Loaded %d programmes for %d channels from %s",
				guide.ProgrammeCount(), guide.ChannelCount(), data.Epg)
			metrics.GuideProgrammes.Set(float64(guide.ProgrammeCount()))
			s.mu.Lock()
			s.guide = guide
			s.mu.Unlock()
			s.dispatcher.SetGuide(guide)
		}
	}

	if data.SportFeed != "" {
		if content, err := loadContent(data.SportFeed); err != nil {
			logger.Warnf("Sport feed not loaded from %s: %v", data.SportFeed, err)
		} else {
			sport := sportfeed.Parse(content)
			matches := 0
			for _, day := range sport {
				matches += len(day.Matches)
			}
			logger.Infof("Loaded %d matches over %d days from %s", matches, len(sport), data.SportFeed)
			s.mu.Lock()
			s.sport = sport
			s.mu.Unlock()
		}
	}

	return nil
}

func loadContent(filePath string) (string, error) {
	if strings.HasPrefix(filePath, "http://") || strings.HasPrefix(filePath, "https://") {
		// Load content from URL
		resp, err := http.Get(filePath)
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return "", err
		}
		return string(body), nil
	} else {
		// Load content from local file
		file, err := os.Open(filePath)
		if err != nil {
			return "", err
		}
		defer file.Close()

		body, err := io.ReadAll(file)
		if err != nil {
			return "", err
		}
		return string(body), nil
	}
}
