package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-microbench/access"
	"github.com/nvr-ai/go-microbench/report"
)

func TestRunReportsEveryStyle(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out))

	records, err := report.Parse(&out)
	require.NoError(t, err)
	require.Len(t, records, 2*len(access.Styles))
	assert.Equal(t, access.StyleIterator.Section(), records[len(records)-1].Section)
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.ElapsedSeconds, 0.0)
	}
}
