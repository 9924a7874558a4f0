// Command matrix times row-major and column-major traversals of a
// row-major stored matrix.
package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-microbench/benchmark"
	"github.com/nvr-ai/go-microbench/report"
	"github.com/nvr-ai/go-microbench/traversal"
)

func main() {
	log.SetOutput(os.Stderr)

	suite, err := traversal.NewSuite(benchmark.NewHarness(), report.NewWriter(os.Stdout), traversal.MatrixSize)
	if err != nil {
		log.Fatalf("Failed to allocate matrix: %v", err)
	}

	if err := suite.RunAll(context.Background()); err != nil {
		log.Fatalf("Benchmark execution failed: %v", err)
	}

	benchmark.LogResults(suite.Results())
}
