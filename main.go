package main

import (
	"os"

	"github.com/klytics/xlkit/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
