package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/cup/cmd"
)

// init sets the log level used until the flags are parsed.
func init() {
	logrus.SetLevel(logrus.InfoLevel)
}

// main is the entry point of Cup; it delegates to the cmd package.
func main() {
	cmd.Execute()
}
