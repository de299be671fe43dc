package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/zones/internal/compiler"
	"github.com/roach88/zones/internal/ir"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the zones loaded from a specs directory.
type LoadResult struct {
	Zones     []*ir.ZoneSpec
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func loadErr(code, format string, args ...any) []error {
	return []error{&LoadError{Code: code, Message: fmt.Sprintf(format, args...)}}
}

// LoadSpecs loads, compiles and validates the zones declared in the CUE
// package in dir. Zones that fail to compile or validate are left out of
// the result and reported as errors.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	fileCount, errs := checkSpecsDir(dir)
	if errs != nil {
		return nil, errs
	}
	value, errs := buildSpecsValue(dir)
	if errs != nil {
		return nil, errs
	}

	result := &LoadResult{CUEValue: value, FileCount: fileCount}
	zones := value.LookupPath(cue.ParsePath("zone"))
	if !zones.Exists() {
		return result, loadErr(ErrCodeGeneric, "no zones found in specs")
	}
	iter, err := zones.Fields()
	if err != nil {
		return result, loadErr(ErrCodeGeneric, "iterating zones: %v", err)
	}

	for iter.Next() {
		zoneErrs := loadZone(result, iter.Selector(), iter.Value())
		errs = append(errs, zoneErrs...)
		if len(zoneErrs) > 0 && mode == LoadModeFailFast {
			return result, errs
		}
	}
	if len(result.Zones) == 0 && len(errs) == 0 {
		errs = loadErr(ErrCodeGeneric, "no zones found in specs")
	}
	return result, errs
}

// checkSpecsDir returns the number of CUE files under dir.
func checkSpecsDir(dir string) (int, []error) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return 0, loadErr(ErrCodeNotFound, "specs directory not found: %s", dir)
	case err != nil:
		return 0, loadErr(ErrCodeNotFound, "error accessing specs directory: %v", err)
	case !info.IsDir():
		return 0, loadErr(ErrCodeNotFound, "not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return 0, loadErr(ErrCodeScanError, "error scanning directory: %v", err)
	}
	if len(files) == 0 {
		return 0, loadErr(ErrCodeNoFiles, "no CUE files found in %s", dir)
	}
	return len(files), nil
}

// buildSpecsValue loads the CUE package in dir as one value.
func buildSpecsValue(dir string) (cue.Value, []error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return cue.Value{}, loadErr(ErrCodeLoadFailed, "no CUE instances loaded")
	}
	if err := instances[0].Err; err != nil {
		return cue.Value{}, loadErr(ErrCodeLoadFailed, "loading CUE files: %v", err)
	}

	value := cuecontext.New().BuildInstance(instances[0])
	if err := value.Err(); err != nil {
		return cue.Value{}, loadErr(ErrCodeBuildFailed, "building CUE value: %v", err)
	}
	return value, nil
}

// loadZone compiles and validates one zone, appending it to result when
// it is sound.
func loadZone(result *LoadResult, sel cue.Selector, v cue.Value) []error {
	spec, err := compiler.CompileZone(v)
	if err != nil {
		return []error{convertCompileError(err, "zone."+sel.String())}
	}

	verrs := compiler.Validate(spec)
	if len(verrs) == 0 {
		result.Zones = append(result.Zones, spec)
		return nil
	}
	errs := make([]error, 0, len(verrs))
	for _, verr := range verrs {
		errs = append(errs, &LoadError{
			Code:    verr.Code,
			Message: fmt.Sprintf("zone %s: %s: %s", spec.Name, verr.Field, verr.Message),
			Pos:     v.Pos(),
		})
	}
	return errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s: %s", context, compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants shared by all CLI commands. Spec validation codes
// (E1xx) come from the compiler package.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeZoneFailed  = "E008" // Zone construction failed

	ErrCodeInvalidStructure = "E010" // Zone struct malformed (wrong CUE types)
	ErrCodeTestFailed       = "E020" // One or more scenarios failed
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "clocks":
		return compiler.ErrNoClocks
	case field == "init":
		return compiler.ErrInvalidInit
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "":
		return ErrCodeGeneric
	default:
		return ErrCodeInvalidStructure
	}
}
