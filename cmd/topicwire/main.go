package main

import (
	"os"

	"topicwire/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
