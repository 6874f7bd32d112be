// Package fixture discovers .mood test programs, compiles and executes
// them, and compares each outcome against the .expected file next to it.
// An outcome is either the decimal result of the program's exported test
// function or the rendered diagnostic when compilation fails.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/moodlang/mood"
	"github.com/moodlang/mood/diag"
)

// Result is the outcome of one fixture.
type Result struct {
	// Name is the fixture path relative to the root.
	Name string
	// Outcome is what the fixture produced this run.
	Outcome string
	// Expected is the recorded outcome; empty when the run rewrote the
	// .expected file instead of comparing against it.
	Expected string
	// Passed is true when Outcome matches Expected.
	Passed bool
	// Written is true when the .expected file was (re)written.
	Written bool
}

// Run executes every *.mood fixture under root. With write set, each
// .expected file is rewritten with the fresh outcome instead of compared.
func Run(ctx context.Context, fs afero.Fs, root string, write bool) ([]Result, error) {
	var paths []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".mood") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, path := range paths {
		result, err := runOne(ctx, fs, root, path, write)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

func runOne(ctx context.Context, fs afero.Fs, root, path string, write bool) (Result, error) {
	name, err := filepath.Rel(root, path)
	if err != nil {
		name = path
	}
	result := Result{Name: name}

	source, err := afero.ReadFile(fs, path)
	if err != nil {
		return result, err
	}
	result.Outcome = outcome(ctx, string(source), filepath.Base(path))

	expectedPath := strings.TrimSuffix(path, ".mood") + ".expected"
	if write {
		if err := afero.WriteFile(fs, expectedPath, []byte(result.Outcome+"\n"), 0o644); err != nil {
			return result, err
		}
		result.Written = true
		result.Passed = true
		return result, nil
	}

	expected, err := afero.ReadFile(fs, expectedPath)
	if err != nil {
		return result, fmt.Errorf("fixture %s has no expected file: %w", name, err)
	}
	result.Expected = strings.TrimRight(string(expected), "\n")
	result.Passed = result.Outcome == result.Expected
	return result, nil
}

// outcome compiles and runs one fixture. Diagnostics render without colour
// so .expected files stay byte-stable across environments.
func outcome(ctx context.Context, source, filename string) string {
	bin, err := mood.Compile(source)
	if err != nil {
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			prev := color.NoColor
			color.NoColor = true
			defer func() { color.NoColor = prev }()
			return strings.TrimRight(d.Render(source, filename), "\n")
		}
		return "error: " + err.Error()
	}

	value, err := Execute(ctx, bin)
	if err != nil {
		return "trap: " + err.Error()
	}
	return fmt.Sprintf("%d", value)
}

// Execute instantiates the binary in a fresh wazero runtime and calls its
// exported test function.
func Execute(ctx context.Context, bin []byte) (int32, error) {
	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	mod, err := runtime.Instantiate(ctx, bin)
	if err != nil {
		return 0, err
	}
	fn := mod.ExportedFunction("test")
	if fn == nil {
		return 0, errors.New(`module does not export a "test" function`)
	}
	res, err := fn.Call(ctx)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, errors.New(`"test" returned no value`)
	}
	return api.DecodeI32(res[0]), nil
}
