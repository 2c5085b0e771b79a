// Command lifelines renders hostage timeline data as an SVG flow diagram.
package main

import "github.com/peledor/lifelines/cmd"

func main() {
	cmd.Execute()
}
