package main

import "github.com/netxfw/testsel/cmd/testsel/commands"

func main() {
	commands.Execute()
}
