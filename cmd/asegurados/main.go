package main

import "github.com/mcoot/aseguradoss/internal/cli"

func main() {
	cli.Execute()
}
