package main

import "github.com/xrplsynth/synthnode/internal/cli"

func main() {
	cli.Execute()
}
