package main

import "github.com/chupakbra/userboard/cli"

func main() {
	cli.Execute()
}
