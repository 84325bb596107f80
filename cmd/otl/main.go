package main

import "github.com/OpenTraceLab/OpenTraceLength/cmd/otl/cmd"

func main() {
	cmd.Execute()
}
