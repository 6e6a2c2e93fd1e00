package main

import "github.com/mouse-blink/evolve/cmd"

func main() {
	cmd.Execute()
}
