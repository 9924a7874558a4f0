// Command arithmetic times scalar add, multiply and divide loops in single
// and double precision.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-microbench/arithmetic"
	"github.com/nvr-ai/go-microbench/benchmark"
	"github.com/nvr-ai/go-microbench/report"
)

func main() {
	log.SetOutput(os.Stderr)

	suite, err := arithmetic.NewSuite(benchmark.NewHarness(), report.NewWriter(os.Stdout), arithmetic.DefaultTripCount)
	if err != nil {
		log.Fatalf("Failed to build arithmetic suite: %v", err)
	}

	if err := suite.RunAll(context.Background()); err != nil {
		log.Fatalf("Benchmark execution failed: %v", err)
	}
	benchmark.LogResults(suite.Results())
	log.WithField("accumulator", arithmetic.Sink).Info("arithmetic trials complete")
}
