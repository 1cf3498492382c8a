package main

import "github.com/pfrederiksen/animalitos/internal/cli"

func main() {
	cli.Execute()
}
