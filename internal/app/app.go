package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vk/kord/internal/coord"
	"github.com/vk/kord/internal/ctxlog"
	"github.com/vk/kord/internal/op"
	"github.com/vk/kord/internal/provider"
)

// App wires a provider, an instantiated operation and the i/o streams into
// a runnable coordinate processing session.
type App struct {
	config *Config
	outW   io.Writer
	errW   io.Writer
}

// NewApp constructs the application around its output streams. Results go
// to outW, logs to errW.
func NewApp(outW, errW io.Writer, config *Config) *App {
	return &App{config: config, outW: outW, errW: errW}
}

// Run instantiates the configured operation and processes coordinates from
// input until EOF.
func (a *App) Run(ctx context.Context, input io.Reader) error {
	logger := newLogger(a.config.LogLevel, a.config.LogFormat, a.errW)
	ctx = ctxlog.WithLogger(ctx, logger)

	prv, err := a.newProvider(ctx)
	if err != nil {
		return fmt.Errorf("provider setup: %w", err)
	}

	handle, err := prv.Op(a.config.Definition)
	if err != nil {
		return fmt.Errorf("instantiating %q: %w", a.config.Definition, err)
	}
	logger.Debug("operation instantiated", "definition", a.config.Definition)

	direction := op.Forward
	if a.config.Inverse {
		direction = op.Inverse
	}

	batch, err := readCoordinates(input, a.config.Degrees)
	if err != nil {
		return err
	}
	logger.Debug("coordinates read", "count", batch.Len())

	reference := make(coord.Slice, batch.Len())
	copy(reference, batch)

	successes, err := prv.Apply(handle, direction, &batch)
	if err != nil {
		return fmt.Errorf("applying %q: %w", a.config.Definition, err)
	}
	if successes != batch.Len() {
		logger.Warn("not all coordinates transformed",
			"successes", successes, "total", batch.Len())
	}

	if a.config.Roundtrip {
		if _, err := prv.Apply(handle, op.Inverse, &batch); err != nil {
			return fmt.Errorf("roundtrip of %q: %w", a.config.Definition, err)
		}
		for i := 0; i < batch.Len(); i++ {
			fmt.Fprintf(a.outW, "%.6g\n", batch.Get(i).HypotTo(reference.Get(i)))
		}
		return nil
	}

	for i := 0; i < batch.Len(); i++ {
		c := batch.Get(i)
		if a.config.Degrees {
			c = coord.Coor4D{degrees(c[1]), degrees(c[0]), c[2], c[3]}
		}
		fmt.Fprintf(a.outW, "%.10g %.10g %.10g %.10g\n", c[0], c[1], c[2], c[3])
	}
	return nil
}

// newProvider picks the Plain provider when resource paths are configured,
// the Minimal one otherwise.
func (a *App) newProvider(ctx context.Context) (op.Provider, error) {
	if len(a.config.ResourcePaths) == 0 {
		return provider.NewMinimal(), nil
	}
	return provider.NewPlain(ctx, a.config.ResourcePaths...)
}

// readCoordinates parses whitespace separated coordinate tuples of 2 to 4
// columns, one per line. Blank lines and lines starting with # are
// skipped. With degrees set, input is taken as latitude-longitude in
// degrees and converted to the internal representation.
func readCoordinates(input io.Reader, degrees bool) (coord.Slice, error) {
	var batch coord.Slice

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 || len(fields) > 4 {
			return nil, fmt.Errorf("malformed coordinate %q: want 2 to 4 columns", line)
		}

		var c coord.Coor4D
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("malformed coordinate %q: %w", line, err)
			}
			c[i] = v
		}

		if degrees {
			batch = append(batch, coord.Geo(c[0], c[1], c[2], c[3]))
			continue
		}
		batch = append(batch, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading coordinates: %w", err)
	}
	return batch, nil
}

func degrees(radians float64) float64 {
	return radians * 57.29577951308232
}
