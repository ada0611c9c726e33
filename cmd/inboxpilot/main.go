package main

import "aaronromeo.com/inboxpilot/internal/cli"

func main() {
	cli.Execute()
}
