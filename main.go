package main

import (
	"os"

	"github.com/maastricht-university/speech-coach/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
