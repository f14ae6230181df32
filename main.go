package main

import "github.com/qrave1/RhythmDuel/cmd"

func main() {
	cmd.Execute()
}
