package main

import (
	"os"

	"github.com/pynezz/scriptshield/internal/util"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		util.PrintError(err.Error())
		os.Exit(1)
	}
}
