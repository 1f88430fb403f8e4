// Command qa-server runs the question-answering API and its maintenance
// commands.
//
// @title       Go QA Backend API
// @version     1.0
// @description Question answering over a generative provider with caching, history, threads, recent questions and saved answers.
// @BasePath    /api/v1
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("qa-server failed")
		os.Exit(1)
	}
}
