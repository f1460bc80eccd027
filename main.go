package main

import "github.com/theirongolddev/roomwise/cmd"

func main() {
	cmd.Execute()
}
