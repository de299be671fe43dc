package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/zones/internal/compiler"
	"github.com/roach88/zones/internal/dbm"
	"github.com/roach88/zones/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // canonical IR output file
	Full   bool   // list every finite bound instead of the minimal set
}

// ZoneReport describes one compiled zone.
type ZoneReport struct {
	Name        string   `json:"name"`
	Clocks      []string `json:"clocks"`
	Display     string   `json:"display"`
	Empty       bool     `json:"empty"`
	Constraints []string `json:"constraints"`
	Hash        string   `json:"hash"`
	SpecHash    string   `json:"spec_hash"`
}

// CompilationResult holds the compiled zones.
type CompilationResult struct {
	Zones []ZoneReport `json:"zones"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE zone specs and print each zone",
		Long: `Compile CUE zone specs, build every zone and print its display
string, constraints and content hash.

By default the minimal constraint set is listed; --full lists every
finite bound of the closed matrix.

Examples:
  zones compile ./specs
  zones compile ./specs --full
  zones compile ./specs -o zones.json --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write canonical IR to this file")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "list all finite bounds, not just the minimal set")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadSpecs(specsDir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := CompilationResult{Zones: make([]ZoneReport, 0, len(loadResult.Zones))}
	for _, spec := range loadResult.Zones {
		formatter.VerboseLog("Compiling zone: %s", spec.Name)
		report, err := buildReport(spec, opts.Full)
		if err != nil {
			return outputCompileError(formatter, ErrCodeZoneFailed, err.Error())
		}
		result.Zones = append(result.Zones, report)
	}

	if opts.Output != "" {
		if err := writeIRToFile(loadResult.Zones, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// buildReport builds the zone for spec and describes it.
func buildReport(spec *ir.ZoneSpec, full bool) (ZoneReport, error) {
	z, err := compiler.Build(spec)
	if err != nil {
		return ZoneReport{}, err
	}
	specHash, err := ir.SpecHash(spec)
	if err != nil {
		return ZoneReport{}, err
	}

	names := compiler.Names(spec)
	report := ZoneReport{
		Name:        spec.Name,
		Clocks:      spec.Clocks,
		Display:     z.Format(names),
		Empty:       z.IsEmpty(),
		Constraints: []string{},
		Hash:        z.Hash().String(),
		SpecHash:    specHash,
	}
	if report.Empty {
		return report, nil
	}

	var cs []dbm.Constraint
	if full {
		cs, err = z.Constraints()
	} else {
		cs, err = z.MinimalConstraints()
	}
	if err != nil {
		return ZoneReport{}, err
	}
	for _, c := range cs {
		report.Constraints = append(report.Constraints, c.Format(names))
	}
	return report, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult, outputFile string) error {
	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d zone(s)\n\n", len(result.Zones))
	for _, zone := range result.Zones {
		fmt.Fprintf(w, "%s %v\n", zone.Name, zone.Clocks)
		fmt.Fprintf(w, "  zone: %s\n", zone.Display)
		for _, c := range zone.Constraints {
			fmt.Fprintf(w, "    %s\n", c)
		}
		fmt.Fprintf(w, "  hash: %s\n\n", zone.Hash)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical IR to %s\n", outputFile)
	}
	return nil
}

// outputCompileError outputs a single compilation error.
// Compilation errors are command-level errors (exit code 2).
func outputCompileError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	exitErr := NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))

	if formatter.IsJSON() {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{Code: code, Message: message}
		}
		if err := formatter.Encode(CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors,
		}); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}
	return exitErr
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	return ErrCodeGeneric, err.Error()
}

// writeIRToFile writes the zone specs to a file as canonical JSON, the
// same bytes SpecHash is computed over.
func writeIRToFile(specs []*ir.ZoneSpec, filename string) error {
	arr := make(ir.Array, len(specs))
	for i, spec := range specs {
		arr[i] = spec.Value()
	}
	data, err := ir.MarshalCanonical(arr)
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
