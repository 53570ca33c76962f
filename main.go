package main

import "visor/cmd"

func main() {
	cmd.Execute()
}
