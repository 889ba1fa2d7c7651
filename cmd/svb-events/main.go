package main

import "github.com/pfrederiksen/svb-events/internal/cli"

func main() {
	cli.Execute()
}
