package sportfeed

import (
	"testing"
	"time"
)

const sampleFeed = `ΠΡΟΓΡΑΜΜΑ

Σαββατο 1/6/2024
14:00 Ολυμπιακός - ΠΑΟΚ [Link1](http://streams.example/one.m3u8) [Link2](http://streams.example/two.m3u8)
21:45 Champions League Final [Link1](http://streams.example/final)

Κυριακη 2/6/2024
18:30 ΑΕΚ - Άρης [Link1](http://streams.example/aek)
not a match line
`

func TestParse(t *testing.T) {
	days := Parse(sampleFeed)

	if len(days) != 2 {
		t.Fatalf("Expected 2 day schedules, got %d", len(days))
	}

	if days[0].Header != "Σαββατο 1/6/2024" {
		t.Errorf("Unexpected day header: %q", days[0].Header)
	}
	if len(days[0].Matches) != 2 {
		t.Fatalf("Expected 2 matches on day 1, got %d", len(days[0].Matches))
	}

	first := days[0].Matches[0]
	if first.Time != "14:00" {
		t.Errorf("Unexpected kick-off time: %q", first.Time)
	}
	if first.Title != "Ολυμπιακός - ΠΑΟΚ" {
		t.Errorf("Unexpected title: %q", first.Title)
	}
	if first.Day != "Σαββατο 1/6/2024" {
		t.Errorf("Unexpected day on entry: %q", first.Day)
	}

	// Every link pair on the line is extracted, not just the first.
	if len(first.Links) != 2 {
		t.Fatalf("Expected 2 links, got %d", len(first.Links))
	}
	if first.Links[0].Label != "Link1" || first.Links[0].TargetURL != "http://streams.example/one.m3u8" {
		t.Errorf("Unexpected first link: %+v", first.Links[0])
	}
	if first.Links[1].Label != "Link2" || first.Links[1].TargetURL != "http://streams.example/two.m3u8" {
		t.Errorf("Unexpected second link: %+v", first.Links[1])
	}

	if len(days[1].Matches) != 1 {
		t.Fatalf("Expected 1 match on day 2, got %d", len(days[1].Matches))
	}
}

func TestIsLive(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		kickOff  string
		clock    time.Time
		expected bool
	}{
		{"14:00", day.Add(13*time.Hour + 25*time.Minute), true},  // 35 min before kick-off
		{"14:00", day.Add(12 * time.Hour), false},                // 120 min before kick-off
		{"14:00", day.Add(15*time.Hour + 30*time.Minute), true},  // 90 min in, overtime
		{"14:00", day.Add(15*time.Hour + 40*time.Minute), false}, // exactly at the window edge
		{"garbage", day.Add(14 * time.Hour), false},
		{"25:00", day.Add(14 * time.Hour), false},
	}

	for _, c := range cases {
		if got := IsLive(c.kickOff, c.clock); got != c.expected {
			t.Errorf("IsLive(%q, %v) = %v, expected %v", c.kickOff, c.clock, got, c.expected)
		}
	}
}

func TestLiveIsRecomputedPerCall(t *testing.T) {
	days := Parse(sampleFeed)
	match := days[0].Matches[0] // kick-off 14:00

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if match.Live(day.Add(9 * time.Hour)) {
		t.Error("Match should not be live in the morning")
	}
	if !match.Live(day.Add(14 * time.Hour)) {
		t.Error("Match should be live at kick-off")
	}
	if match.Live(day.Add(20 * time.Hour)) {
		t.Error("Match should not be live in the evening")
	}
}
