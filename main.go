package main

import "github.com/lepinkainen/literalura/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
