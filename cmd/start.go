/*
Copyright © 2024 Alexandre Pires

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"github.com/forestrock/webtv/pkg/logger"
	"github.com/forestrock/webtv/pkg/streamserver"

	"github.com/spf13/cobra"
)

var (
	playlistFile  string
	epgFile       string
	sportFeedFile string
	logFile       string
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the webtv service",
	Long:  `Start the webtv service that serves channels, guide data and playback state.`,
	Run: func(cmd *cobra.Command, args []string) {

		if ConfigFile == "" {
			ConfigFile = "webtv.json"
		}

		config := streamserver.NewServerConfig(ConfigFile)

		data := config.Data()
		if playlistFile != "" {
			data.Playlist = playlistFile
		}
		if epgFile != "" {
			data.Epg = epgFile
		}
		if sportFeedFile != "" {
			data.SportFeed = sportFeedFile
		}
		if logFile != "" {
			data.LogFile = logFile
		}
		config.Set(data)

		if config.Data().LogFile != "" {
			logger.Init(config.Data().LogFile)
		}

		logger.Infof("Starting webtv")
		logger.Infof("Playlist: %s", config.Data().Playlist)
		logger.Infof("EPG: %s", config.Data().Epg)

		streamserver.Start(config)
	},
}

func init() {
	startCmd.Flags().StringVar(&playlistFile, "playlist", "", "playlist file or URL (overrides config)")
	startCmd.Flags().StringVar(&epgFile, "epg", "", "XMLTV guide file or URL (overrides config)")
	startCmd.Flags().StringVar(&sportFeedFile, "sport-feed", "", "sport programme feed file or URL (overrides config)")
	startCmd.Flags().StringVar(&logFile, "log-file", "", "log file path (overrides config)")
	RootCmd.AddCommand(startCmd)
}
