package main

import "valoracademy/cmd/cli/command"

func main() {
	command.Execute()
}
