package main

import (
	"os"

	"github.com/mish-shell/mish/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
