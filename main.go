package main

import (
	"github.com/rzzju/Unicycler/cmd"
)

func main() {
	cmd.Execute() // initialize cobra commands
}
