package main

import "github.com/adipundir/donatrade/internal/cli"

func main() {
	cli.Execute()
}
