package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
	"github.com/finos/architecture-as-code-sub007/internal/lint"
	"github.com/finos/architecture-as-code-sub007/internal/logger"
	"github.com/finos/architecture-as-code-sub007/internal/metrics"
)

// ValidateIO handles I/O for the validate command.
type ValidateIO interface {
	// ReadFile reads the document or pattern at path.
	ReadFile(path string) ([]byte, error)
	// Glob returns the files matching a doublestar pattern.
	Glob(pattern string) ([]string, error)
	// WriteMetrics writes the recorded metrics to path.
	WriteMetrics(path string, rec *metrics.Recorder) error
}

// NewValidateCmd creates the validate subcommand using os.Getwd for config lookup.
func NewValidateCmd(io ValidateIO) *cobra.Command {
	return newValidateCmdWithGetCWD(io, os.Getwd)
}

func newValidateCmdWithGetCWD(io ValidateIO, getwd func() (string, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [document|glob]...",
		Short: "Validate CALM architecture documents and patterns",
		Long: "Validate checks that every identifier reference in each architecture document\n" +
			"resolves, that unique-ids are unique, and, with --pattern, that the pattern's\n" +
			"decision options are declared in oneOf or anyOf branches. Without documents,\n" +
			"only the pattern is checked.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patternPath, _ := cmd.Flags().GetString("pattern")
			metricsFile, _ := cmd.Flags().GetString("metrics-file")

			if len(args) == 0 && patternPath == "" {
				return errors.New("nothing to validate: pass documents or --pattern")
			}

			s, err := newSession(cmd, getwd, logger.ComponentValidate)
			if err != nil {
				return err
			}

			files, err := expandArgs(io, args)
			if err != nil {
				return err
			}

			var pattern *calm.Pattern
			if patternPath != "" {
				if pattern, err = loadPattern(io, patternPath); err != nil {
					return fmt.Errorf("pattern %s: %w", patternPath, err)
				}
			}

			rec := metrics.NewRecorder()
			var reports []FileReport
			if len(files) == 0 {
				reports = []FileReport{s.validatePattern(patternPath, pattern, rec)}
			} else {
				reports, err = s.validateAll(cmd.Context(), io, files, pattern, rec)
				if err != nil {
					return err
				}
			}

			if s.outputFormat(cmd) == "json" {
				if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
					return err
				}
			} else {
				p := newPrinter(cmd.OutOrStdout(), s.cfg.Output.Color)
				for _, r := range reports {
					p.report(r)
				}
			}

			if metricsFile != "" {
				if err := io.WriteMetrics(metricsFile, rec); err != nil {
					return err
				}
			}

			if failed := countFailed(reports); failed > 0 {
				return fmt.Errorf("%d of %d document(s) failed validation", failed, len(reports))
			}
			return nil
		},
	}

	cmd.Flags().String("pattern", "", "pattern document to validate and apply")
	cmd.Flags().Bool("json", false, "output reports as a JSON array")
	cmd.Flags().String("metrics-file", "", "write Prometheus metrics in text format to this file")

	return cmd
}

// validateAll validates files concurrently. Reports keep argument order.
func (s *session) validateAll(ctx context.Context, r fileReader, files []string, pattern *calm.Pattern, rec *metrics.Recorder) ([]FileReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]FileReport, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Validate.Concurrency)
	for i, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = s.validateFile(r, f, pattern, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// validateFile runs one pass over path. Decode findings and rule findings are
// merged into one report.
func (s *session) validateFile(r fileReader, path string, pattern *calm.Pattern, rec *metrics.Recorder) FileReport {
	start := time.Now()
	doc, decodeDiags, err := loadDocument(r, path)
	var ruleDiags []calm.Diagnostic
	if err == nil {
		ruleDiags, err = s.engine.Validate(doc, pattern)
	}
	if err != nil {
		rec.Observe(nil, true, time.Since(start))
		s.log.Warnw("document rejected", "file", path, "error", err)
		return failedFileReport(path, err)
	}

	agg := lint.NewAggregator()
	agg.Add(decodeDiags...)
	agg.Add(ruleDiags...)
	diags := agg.Diagnostics()

	rec.Observe(diags, false, time.Since(start))
	report := newFileReport(path, diags)
	s.log.Infow("document validated", "file", path, "diagnostics", len(diags), "valid", report.Valid)
	return report
}

// validatePattern checks a pattern on its own.
func (s *session) validatePattern(path string, pattern *calm.Pattern, rec *metrics.Recorder) FileReport {
	start := time.Now()
	diags, err := s.engine.ValidatePattern(pattern)
	if err != nil {
		rec.Observe(nil, true, time.Since(start))
		return failedFileReport(path, err)
	}
	rec.Observe(diags, false, time.Since(start))
	s.log.Infow("pattern validated", "file", path, "diagnostics", len(diags))
	return newFileReport(path, diags)
}

// fileValidateIO implements ValidateIO using OS file I/O.
// *Impl methods wrap OS calls and are excluded from coverage requirements.
type fileValidateIO struct{}

// ReadFile reads the file at path.
func (f fileValidateIO) ReadFile(path string) ([]byte, error) {
	return f.ReadFileImpl(path)
}

// ReadFileImpl reads the file using os.ReadFile.
func (f fileValidateIO) ReadFileImpl(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Glob expands a doublestar pattern against the filesystem.
func (f fileValidateIO) Glob(pattern string) ([]string, error) {
	return f.GlobImpl(pattern)
}

// GlobImpl expands pattern with doublestar, returning files only.
func (f fileValidateIO) GlobImpl(pattern string) ([]string, error) {
	return doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
}

// WriteMetrics writes rec to path.
func (f fileValidateIO) WriteMetrics(path string, rec *metrics.Recorder) error {
	return f.WriteMetricsImpl(path, rec)
}

// WriteMetricsImpl writes rec in Prometheus text format.
func (f fileValidateIO) WriteMetricsImpl(path string, rec *metrics.Recorder) error {
	return rec.WriteTextfile(path)
}
