package main

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jsphweid/saxchart/cmd"
	"github.com/jsphweid/saxchart/constants"
)

const sentryFlushTimeout = 2 * time.Second

func main() {
	cfg := cmd.Config()
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			Release:          constants.ServiceName + "@" + cmd.Version,
			EnableTracing:    true,
			TracesSampleRate: 1.0,
			Debug:            !cfg.IsProduction(),
		}); err != nil {
			log.Printf("Sentry initialization failed: %v", err)
		}
		defer sentry.Flush(sentryFlushTimeout)
	}

	cmd.Execute()
}
