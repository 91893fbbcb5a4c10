package main

import "github.com/OpenTraceLab/OpenTraceDraw/internal/cli"

func main() {
	cli.Execute()
}
