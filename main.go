package main

import "rideboard/internal/commands"

func main() {
	commands.Execute()
}
