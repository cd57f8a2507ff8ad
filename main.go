package main

import "github.com/veda-labs/mantramatch/cmd"

func main() {
	cmd.Execute()
}
