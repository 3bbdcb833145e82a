package main

import "github.com/gestiontall/taller/internal/cli"

func main() {
	cli.Execute()
}
