package main

import "github.com/mcoot/courseroster/internal/cli"

func main() {
	cli.Execute()
}
