package main

import "github.com/dkeye/Office/internal/cli"

func main() {
	cli.Execute()
}
