package main

import (
	"github.com/forestrock/webtv/cmd"
)

func main() {
	cmd.Execute()
}
