package streamserver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewServerConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webtv.json")

	config := NewServerConfig(path)

	if config.Data().Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.Data().Port)
	}
	if config.Data().Playlist != "playlist.m3u" {
		t.Errorf("Expected default playlist, got %s", config.Data().Playlist)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected defaults to be saved at %s: %v", path, err)
	}
}

func TestServerConfigLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webtv.json")
	content := `{
  "port": 9090,
  "playlist": "channels.m3u",
  "epg": "https://example.com/guide.xml",
  "sport_feed": "sport.txt",
  "cors_proxies": ["https://relay.example"],
  "native_hls": true
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config := NewServerConfig(path)

	data := config.Data()
	if data.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", data.Port)
	}
	if data.Epg != "https://example.com/guide.xml" {
		t.Errorf("Unexpected epg: %s", data.Epg)
	}
	if len(data.Proxies) != 1 || data.Proxies[0] != "https://relay.example" {
		t.Errorf("Unexpected proxies: %v", data.Proxies)
	}
	if !data.NativeHLS {
		t.Error("Expected native_hls to be set")
	}
}

func TestServerConfigSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "webtv.json")

	config := NewServerConfig(path)
	data := config.Data()
	data.Port = 1234
	config.Set(data)
	if err := config.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded := NewServerConfig(path)
	if reloaded.Data().Port != 1234 {
		t.Errorf("Expected port 1234 after reload, got %d", reloaded.Data().Port)
	}
}
