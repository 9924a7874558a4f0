// Command vector times element writes and reads over a fixed-size array,
// a slice, a gorgonia tensor and the same tensor walked by its iterator.
package main

import (
	"context"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-microbench/access"
	"github.com/nvr-ai/go-microbench/benchmark"
	"github.com/nvr-ai/go-microbench/report"
)

func main() {
	log.SetOutput(os.Stderr)

	if err := run(context.Background(), os.Stdout); err != nil {
		log.Fatalf("Benchmark execution failed: %v", err)
	}
}

func run(ctx context.Context, out io.Writer) error {
	suite := access.NewSuite(benchmark.NewHarness(), report.NewWriter(out))
	if err := suite.RunAll(ctx); err != nil {
		return err
	}
	benchmark.LogResults(suite.Results())
	return nil
}
