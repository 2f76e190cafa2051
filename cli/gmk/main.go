package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/raphaelvigee/gmk/cmd"
)

func main() {
	log.SetOutput(os.Stderr)

	log.SetFormatter(&log.TextFormatter{
		ForceColors: true,
	})

	cmd.Execute()
}
