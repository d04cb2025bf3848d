package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/ctxlog"
	"github.com/vk/kord/internal/fsutil"
	"github.com/vk/kord/internal/op"
)

// Plain is the file backed provider: everything Minimal does, plus macros
// and globals loaded from HCL resource files, and blob and grid lookup
// along a list of search paths.
type Plain struct {
	*Minimal
	globals map[string]string
	paths   []string
}

// macroBlock is one `macro "ns:name" { definition = "..." }` block.
type macroBlock struct {
	Name       string `hcl:"name,label"`
	Definition string `hcl:"definition"`
}

// resourceRoot decodes all recognized top-level content of a resource file.
type resourceRoot struct {
	Macros  []*macroBlock  `hcl:"macro,block"`
	Globals hcl.Expression `hcl:"globals,optional"`
}

// decodeGlobals evaluates a `globals = { ellps = "intl", ... }` attribute
// into plain strings.
func decodeGlobals(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}
	value, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if value.IsNull() {
		return nil, nil
	}

	globals := map[string]string{}
	for key, element := range value.AsValueMap() {
		text, err := convert.Convert(element, cty.String)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", key, err)
		}
		globals[key] = text.AsString()
	}
	return globals, nil
}

// NewPlain returns a Plain provider with resources loaded from every .hcl
// file found under the given search paths.
func NewPlain(ctx context.Context, paths ...string) (*Plain, error) {
	logger := ctxlog.FromContext(ctx)

	p := &Plain{
		Minimal: NewMinimal(),
		globals: map[string]string{"ellps": "GRS80"},
		paths:   paths,
	}

	parser := hclparse.NewParser()
	for _, root := range paths {
		files, err := fsutil.FindFilesByExtension(root, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("resource discovery under %s: %w", root, err)
		}
		logger.Debug("discovered resource files", "path", root, "count", len(files))

		for _, file := range files {
			hclFile, diags := parser.ParseHCLFile(file)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse resource file %s: %w", file, diags)
			}

			var content resourceRoot
			diags = gohcl.DecodeBody(hclFile.Body, nil, &content)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode resource file %s: %w", file, diags)
			}

			for _, macro := range content.Macros {
				if err := p.RegisterResource(macro.Name, macro.Definition); err != nil {
					return nil, fmt.Errorf("macro %s in %s: %w", macro.Name, file, err)
				}
				logger.Debug("registered macro", "name", macro.Name, "file", file)
			}
			globals, err := decodeGlobals(content.Globals)
			if err != nil {
				return nil, fmt.Errorf("globals in %s: %w", file, err)
			}
			for key, value := range globals {
				p.globals[key] = value
			}
		}
	}

	return p, nil
}

// Globals returns the provider defaults, as amended by the resource files.
func (p *Plain) Globals() map[string]string {
	globals := make(map[string]string, len(p.globals))
	for key, value := range p.globals {
		globals[key] = value
	}
	return globals
}

// Op instantiates the operator given by definition. Overridden from
// Minimal so instantiation sees the Plain globals and resources.
func (p *Plain) Op(definition string) (op.Handle, error) {
	o, err := op.New(definition, p)
	if err != nil {
		return op.Handle{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.operators[o.ID] = o
	return o.ID, nil
}

// Apply runs the operator behind the handle. Overridden from Minimal so
// operator functions resolving resources at apply time see the Plain
// search paths and grid loader, not the embedded Minimal.
func (p *Plain) Apply(h op.Handle, direction op.Direction, operands coord.Set) (int, error) {
	return p.applyAs(p, h, direction, operands)
}

// GetBlob searches the resource paths for the named asset, falling back to
// the Minimal convention.
func (p *Plain) GetBlob(name string) ([]byte, error) {
	for _, root := range p.paths {
		if blob, err := os.ReadFile(filepath.Join(root, name)); err == nil {
			return blob, nil
		}
	}
	return p.Minimal.GetBlob(name)
}

// GetGrid reads and parses a Gravsoft style text grid: a header line of
// lat_0 lat_1 lon_0 lon_1 dlat dlon, followed by row-major values from the
// north-west corner.
func (p *Plain) GetGrid(name string) (*op.Grid, error) {
	blob, err := p.GetBlob(name)
	if err != nil {
		return nil, op.NewError(op.ErrNotFound, name, err.Error())
	}

	fields := strings.Fields(string(blob))
	if len(fields) < 7 {
		return nil, op.NewError(op.ErrBadParam, name, "truncated grid")
	}

	header := make([]float64, 6)
	for i := range header {
		header[i], err = strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, op.NewError(op.ErrBadParam, name, fields[i])
		}
	}

	grid := &op.Grid{
		Name: name,
		Lat0: header[0], Lat1: header[1],
		Lon0: header[2], Lon1: header[3],
		DLat: header[4], DLon: header[5],
	}
	grid.Rows = 1 + int((grid.Lat1-grid.Lat0)/grid.DLat+0.5)
	grid.Cols = 1 + int((grid.Lon1-grid.Lon0)/grid.DLon+0.5)

	values := fields[6:]
	if grid.Rows*grid.Cols == 0 || len(values)%(grid.Rows*grid.Cols) != 0 {
		return nil, op.NewError(op.ErrBadParam, name, "grid extent does not match value count")
	}
	grid.Bands = len(values) / (grid.Rows * grid.Cols)

	grid.Values = make([]float64, len(values))
	for i, field := range values {
		grid.Values[i], err = strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, op.NewError(op.ErrBadParam, name, field)
		}
	}
	return grid, nil
}
