package main

import "github.com/schemaferry/schemaferry/internal/cli"

func main() {
	cli.Execute()
}
