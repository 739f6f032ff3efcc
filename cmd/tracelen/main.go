package main

import "github.com/OpenTraceLab/tracelen/cmd/tracelen/cmd"

func main() {
	cmd.Execute()
}
