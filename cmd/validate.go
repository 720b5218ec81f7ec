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
	"os"

	"github.com/forestrock/webtv/pkg/m3uparser"
	"github.com/forestrock/webtv/pkg/sportfeed"
	"github.com/forestrock/webtv/pkg/streamserver"
	"github.com/forestrock/webtv/pkg/xmltv"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configured content sources",
	Long:  `Load the playlist, guide and sport feed named in the config and report what parses.`,
	Run: func(cmd *cobra.Command, args []string) {

		if ConfigFile == "" {
			ConfigFile = "webtv.json"
		}

		config := streamserver.NewServerConfig(ConfigFile)
		data := config.Data()
		failed := false

		playlist, err := m3uparser.DecodeFromFile(data.Playlist)
		if err != nil {
			cmd.Printf("playlist %s: %s\n", data.Playlist, err)
			failed = true
		} else {
			cmd.Printf("playlist %s: %d channels\n", data.Playlist, len(playlist.Channels()))
		}

		if data.Epg != "" {
			content, err := os.ReadFile(data.Epg)
			if err != nil {
				cmd.Printf("epg %s: %s\n", data.Epg, err)
				failed = true
			} else if guide, err := xmltv.Load(string(content)); err != nil {
				cmd.Printf("epg %s: %s\n", data.Epg, err)
				failed = true
			} else {
				cmd.Printf("epg %s: %d programmes, %d channels\n",
					data.Epg, guide.ProgrammeCount(), guide.ChannelCount())
			}
		}

		if data.SportFeed != "" {
			content, err := os.ReadFile(data.SportFeed)
			if err != nil {
				cmd.Printf("sport feed %s: %s\n", data.SportFeed, err)
				failed = true
			} else {
				days := sportfeed.Parse(string(content))
				matches := 0
				for _, day := range days {
					matches += len(day.Matches)
				}
				cmd.Printf("sport feed %s: %d matches over %d days\n", data.SportFeed, matches, len(days))
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	RootCmd.AddCommand(validateCmd)
}
