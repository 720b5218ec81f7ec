package streamserver

import (
	"encoding/json"
	"os"
)

type ConfigData struct {
	Port       int      `json:"port"`
	Playlist   string   `json:"playlist"`
	Epg        string   `json:"epg"`
	SportFeed  string   `json:"sport_feed,omitempty"`
	Timeout    int      `json:"default_timeout,omitempty"`
	NumWorkers int      `json:"num_workers,omitempty"`
	ScanTime   int      `json:"scan_time,omitempty"`
	Proxies    []string `json:"cors_proxies,omitempty"`
	NativeHLS  bool     `json:"native_hls,omitempty"`
	HLSEngine  bool     `json:"hls_engine,omitempty"`
	LogFile    string   `json:"log_file,omitempty"`
}

type ServerConfig struct {
	path string
	data ConfigData
}

func NewServerConfig(path string) *ServerConfig {
	c := &ServerConfig{
		path: path,
	}

	if err := c.Load(path); err != nil {
		if os.IsNotExist(err) {
			c.data = ConfigData{
				Port:       8080,
				Playlist:   "playlist.m3u",
				Epg:        "epg.xml",
				Timeout:    5,
				NumWorkers: 4,
				ScanTime:   300,
				Proxies:    []string{},
				HLSEngine:  true,
			}
			if err := c.Save(); err != nil {
				panic(err)
			}
		} else {
			panic(err)
		}
	}
	return c
}

func (c *ServerConfig) Load(path string) error {

	_, err := os.Stat(path)

	if os.IsNotExist(err) {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	err = json.NewDecoder(file).Decode(&c.data)
	if err != nil {
		return err
	}

	c.path = path

	return nil
}

func (c *ServerConfig) Data() ConfigData {
	return c.data
}

func (c *ServerConfig) Set(data ConfigData) {
	c.data = data
}

func (c *ServerConfig) Path() string {
	return c.path
}

func (c *ServerConfig) Save() error {

	file, err := os.Create(c.path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c.data)
}
