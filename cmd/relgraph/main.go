package main

import "relgraph/cmd/relgraph/commands"

func main() {
	commands.Execute()
}
