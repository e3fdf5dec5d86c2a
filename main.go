package main

import "slideforge/cmd"

func main() {
	cmd.Execute()
}
