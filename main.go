package main

import "github.com/Vertex-Scripts/vx-cli/cmd"

func main() {
	cmd.Execute()
}
