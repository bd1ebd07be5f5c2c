package main

import "github.com/diogo/echochat/internal/commands"

func main() {
	commands.Execute()
}
