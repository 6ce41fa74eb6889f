package main

import "github.com/mcoot/undercover/internal/cli"

func main() {
	cli.Execute()
}
