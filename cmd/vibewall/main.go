// Command vibewall generates wallpapers from the command line or runs the
// generation API.
package main

import "github.com/Sniplyy/VibeWall/internal/cli"

func main() {
	cli.Execute()
}
