package main

import "github.com/veo1/online-marketplace/cmd/marketplace/commands"

func main() {
	commands.Execute()
}
