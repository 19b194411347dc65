package main

import "github.com/aisha-shell/aish/cmd"

func main() {
	cmd.Execute()
}
