package main

import "github.com/rhythmatician/dev-agent/internal/cli"

func main() {
	cli.Execute()
}
