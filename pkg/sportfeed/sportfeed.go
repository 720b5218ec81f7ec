package sportfeed

import (
	"bufio"
	"strconv"
	"strings"
	"time"

	"github.com/grafana/regexp"
)

// LiveWindow is the symmetric window around kick-off time during which a
// match counts as live: it covers the pre-match build-up and runs into
// overtime.
const LiveWindow = 100 * time.Minute

// Link is one labeled stream link of a match line.
type Link struct {
	Label     string `json:"label"`
	TargetURL string `json:"targetUrl"`
}

// MatchEntry is a single match line from the sport programme feed.
// Liveness is not stored: it depends on the clock and must be recomputed
// with Live every time the entry is rendered.
type MatchEntry struct {
	Day   string `json:"day"`
	Time  string `json:"time"` // kick-off "HH:MM"
	Title string `json:"title"`
	Links []Link `json:"links"`
}

// DaySchedule groups the matches listed under one day header, in source
// order. Matches before the first header land in a schedule with an
// empty header.
type DaySchedule struct {
	Header  string       `json:"header"`
	Matches []MatchEntry `json:"matches"`
}

var (
	dayPattern   = regexp.MustCompile(`^\p{Greek}+\s\d{1,2}/\d{1,2}/\d{4}$`)
	matchPattern = regexp.MustCompile(`^(\d{1,2}:\d{2})\s+(.*?)\s+\[Link[^\]]*\]`)
	linkPattern  = regexp.MustCompile(`\[(Link[^\]]*)\]\((.*?)\)`)
)

// Parse reads the semi-structured sport programme text into day-grouped
// match entries. Lines that are neither day headers nor match lines are
// ignored.
func Parse(feedText string) []DaySchedule {
	var days []DaySchedule
	currentDay := -1

	scanner := bufio.NewScanner(strings.NewReader(feedText))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if dayPattern.MatchString(line) {
			days = append(days, DaySchedule{Header: line})
			currentDay = len(days) - 1
			continue
		}

		m := matchPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		pairs := linkPattern.FindAllStringSubmatch(line, -1)
		links := make([]Link, 0, len(pairs))
		for _, pair := range pairs {
			links = append(links, Link{Label: pair[1], TargetURL: pair[2]})
		}

		if currentDay < 0 {
			days = append(days, DaySchedule{})
			currentDay = 0
		}

		days[currentDay].Matches = append(days[currentDay].Matches, MatchEntry{
			Day:   days[currentDay].Header,
			Time:  m[1],
			Title: m[2],
			Links: links,
		})
	}

	return days
}

// Live reports whether the match counts as live at the given instant:
// kick-off today at the entry's HH:MM, within LiveWindow either side.
func (m *MatchEntry) Live(now time.Time) bool {
	return IsLive(m.Time, now)
}

// IsLive evaluates the live window for a "HH:MM" kick-off time against
// the given clock. Unparsable times are never live.
func IsLive(kickOff string, now time.Time) bool {
	parts := strings.SplitN(kickOff, ":", 2)
	if len(parts) != 2 {
		return false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return false
	}

	matchTime := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	diff := now.Sub(matchTime)
	if diff < 0 {
		diff = -diff
	}
	return diff < LiveWindow
}
