package sweep

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-microbench/report"
)

// Sample is one measurement of one program built with one variant.
type Sample struct {
	Program             string  `json:"program" csv:"program"`
	Variant             string  `json:"variant" csv:"variant"`
	GCFlags             string  `json:"gcflags" csv:"gcflags"`
	Section             string  `json:"section" csv:"section"`
	Label               string  `json:"label" csv:"label"`
	ElapsedSeconds      float64 `json:"elapsed_s" csv:"elapsed_s"`
	PerOperationSeconds float64 `json:"per_operation_s" csv:"per_operation_s"`
}

// Executor builds and runs programs.
type Executor interface {
	// Build compiles pkg with the given gcflags into out.
	Build(ctx context.Context, pkg, gcflags, out string) error
	// Execute runs bin with env appended to the current environment and
	// returns its standard output.
	Execute(ctx context.Context, bin string, env []string) ([]byte, error)
}

// GoExecutor builds with the go command.
type GoExecutor struct {
	// GoBinary is the go command, "go" when empty.
	GoBinary string
}

// Build runs go build.
func (g GoExecutor) Build(ctx context.Context, pkg, gcflags, out string) error {
	bin := g.GoBinary
	if bin == "" {
		bin = "go"
	}

	args := []string{"build"}
	if gcflags != "" {
		args = append(args, "-gcflags="+gcflags)
	}
	args = append(args, "-o", out, pkg)

	cmd := exec.CommandContext(ctx, bin, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return errors.Wrapf(err, "go build %s: %s", pkg, bytes.TrimSpace(output))
	}
	return nil
}

// Execute runs the built program.
func (g GoExecutor) Execute(ctx context.Context, bin string, env []string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin)
	cmd.Env = append(os.Environ(), env...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "%s: %s", bin, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

// Runner executes a sweep.
type Runner struct {
	config   *Config
	executor Executor
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithExecutor replaces the go command executor.
func WithExecutor(e Executor) RunnerOption {
	return func(r *Runner) {
		r.executor = e
	}
}

// NewRunner creates a runner for a validated configuration.
func NewRunner(config *Config, opts ...RunnerOption) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Runner{
		config:   config,
		executor: GoExecutor{GoBinary: config.GoBinary},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// ProgramName is the last element of a package path.
func ProgramName(pkg string) string {
	return path.Base(pkg)
}

// Run builds and runs every program with every variant, in configuration
// order. A variant that fails to build or run is logged and skipped.
//
// Arguments:
//   - ctx: Cancels the sweep between and during builds and runs.
//
// Returns:
//   - []Sample: Every measurement reported by the programs.
//   - error: When the context is cancelled or the work directory cannot be created.
func (r *Runner) Run(ctx context.Context) ([]Sample, error) {
	workDir, err := os.MkdirTemp("", "microbench-sweep-")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create work directory")
	}
	defer os.RemoveAll(workDir)

	var samples []Sample
	for _, pkg := range r.config.Programs {
		for _, variant := range r.config.Variants {
			if err := ctx.Err(); err != nil {
				return samples, err
			}

			entry := log.WithFields(log.Fields{
				"program": ProgramName(pkg),
				"variant": variant.Name,
				"gcflags": variant.GCFlags,
			})

			records, err := r.runOne(ctx, workDir, pkg, variant)
			if err != nil {
				if ctx.Err() != nil {
					return samples, ctx.Err()
				}
				entry.WithError(err).Warn("variant skipped")
				continue
			}

			for _, rec := range records {
				samples = append(samples, Sample{
					Program:             ProgramName(pkg),
					Variant:             variant.Name,
					GCFlags:             variant.GCFlags,
					Section:             rec.Section,
					Label:               rec.Label,
					ElapsedSeconds:      rec.ElapsedSeconds,
					PerOperationSeconds: rec.PerOperationSeconds,
				})
			}
			entry.WithField("records", len(records)).Info("variant completed")
		}
	}
	return samples, nil
}

func (r *Runner) runOne(ctx context.Context, workDir, pkg string, variant Variant) ([]report.Record, error) {
	bin := filepath.Join(workDir, ProgramName(pkg)+"-"+variant.Name)
	if err := r.executor.Build(ctx, pkg, variant.GCFlags, bin); err != nil {
		return nil, errors.Wrap(err, "compilation with this flag set failed")
	}

	runCtx := ctx
	if r.config.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(r.config.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	output, err := r.executor.Execute(runCtx, bin, variant.Env)
	if err != nil {
		return nil, errors.Wrap(err, "run failed")
	}

	records, err := report.Parse(bytes.NewReader(output))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse output")
	}
	if len(records) == 0 {
		return nil, errors.New("program reported no measurements")
	}
	return records, nil
}
