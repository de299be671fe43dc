package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/zones/internal/ir"
)

// CompileFile compiles every zone declared in a single CUE file and
// validates each one. The first validation error of a zone is returned
// wrapped with the zone name.
func CompileFile(path string) ([]*ir.ZoneSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec file: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	specs, err := CompileZones(v)
	if err != nil {
		return nil, err
	}

	for _, spec := range specs {
		if errs := Validate(spec); len(errs) > 0 {
			return nil, fmt.Errorf("zone %s: %w", spec.Name, errs[0])
		}
	}
	return specs, nil
}
