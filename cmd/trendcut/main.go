package main

import "github.com/pramudya/trendcut/internal/cli"

func main() {
	cli.Main()
}
