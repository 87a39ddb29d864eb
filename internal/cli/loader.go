package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/tidwall/jsonc"

	"github.com/roach88/tokentest/harness"
)

// LoadMode controls how errors are handled while loading a fixture directory.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// fixtureExts lists the recognised fixture file extensions.
var fixtureExts = []string{".yaml", ".yml", ".json", ".jsonc", ".cue"}

// Fixture is a scenario loaded from disk.
type Fixture struct {
	// Path is the fixture file.
	Path string
	// Name is the file name without its extension. Golden files and run
	// history are keyed by it.
	Name string
	// Data is the raw file content.
	Data []byte
	// Scenario is the parsed scenario.
	Scenario *harness.Scenario
}

// LoadError represents an error that occurred while loading a fixture.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No fixture files found
	ErrCodeLoadFailed  = "E004" // File could not be read
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE or JSONC source did not evaluate
	ErrCodeWriteFailed = "E007" // File write error

	// Scenario errors
	ErrCodeParse    = "E101" // Scenario document or token list malformed
	ErrCodeInvalid  = "E102" // Scenario missing required content
	ErrCodeBadExt   = "E103" // Unsupported fixture extension
	ErrCodeDupeName = "E104" // Two fixtures share a name

	// Run history errors
	ErrCodeStore = "E201" // History database unavailable
)

// LoadFixtures finds and loads every fixture under dir whose name matches
// filter. A nil slice with errors means the directory itself was unusable.
func LoadFixtures(dir, filter string, mode LoadMode) ([]*Fixture, []error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("fixtures directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing fixtures directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	paths, err := FindFixtureFiles(dir, filter)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}

	fixtures := []*Fixture{}
	var errs []error
	seen := map[string]string{}
	for _, path := range paths {
		f, err := LoadFixture(path)
		if err == nil {
			if prev, dup := seen[f.Name]; dup {
				err = &LoadError{Code: ErrCodeDupeName, Path: path,
					Message: fmt.Sprintf("fixture name %q already used by %s", f.Name, prev)}
			}
		}
		if err != nil {
			errs = append(errs, err)
			if mode == LoadModeFailFast {
				return fixtures, errs
			}
			continue
		}
		seen[f.Name] = path
		fixtures = append(fixtures, f)
	}
	return fixtures, errs
}

// FindFixtureFiles walks dir and returns fixture files in lexical order,
// skipping golden directories. filter is a glob matched against the
// fixture name.
func FindFixtureFiles(dir, filter string) ([]string, error) {
	if filter != "" {
		if _, err := filepath.Match(filter, ""); err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		if !isFixtureExt(filepath.Ext(path)) {
			return nil
		}
		if filter != "" {
			if matched, _ := filepath.Match(filter, fixtureName(path)); !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// LoadFixture reads one fixture file. YAML is parsed directly, JSON and
// JSONC have comments stripped first, and CUE is evaluated and exported
// to JSON.
func LoadFixture(path string) (*Fixture, error) {
	ext := filepath.Ext(path)
	if !isFixtureExt(ext) {
		return nil, &LoadError{Code: ErrCodeBadExt, Path: path,
			Message: fmt.Sprintf("unsupported fixture extension %q", ext)}
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Path: path, Message: "fixture file not found"}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Path: path, Message: err.Error()}
	}

	doc := data
	switch ext {
	case ".json", ".jsonc":
		doc = jsonc.ToJSON(data)
	case ".cue":
		doc, err = exportCUE(path, data)
		if err != nil {
			return nil, err
		}
	}

	scenario, err := harness.ParseScenario(doc)
	if err != nil {
		code := ErrCodeParse
		if errors.Is(err, harness.ErrInvalidScenario) {
			code = ErrCodeInvalid
		}
		return nil, &LoadError{Code: code, Path: path, Message: err.Error()}
	}

	return &Fixture{
		Path:     path,
		Name:     fixtureName(path),
		Data:     data,
		Scenario: scenario,
	}, nil
}

// exportCUE evaluates a CUE fixture and returns it as JSON. Every field
// must be concrete.
func exportCUE(path string, data []byte) ([]byte, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, cueLoadError(path, "compiling CUE", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, cueLoadError(path, "validating CUE", err)
	}
	out, err := v.MarshalJSON()
	if err != nil {
		return nil, cueLoadError(path, "exporting CUE", err)
	}
	return out, nil
}

func cueLoadError(path, what string, err error) *LoadError {
	le := &LoadError{Code: ErrCodeBuildFailed, Path: path, Message: fmt.Sprintf("%s: %v", what, err)}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Pos = errs[0].Position()
	}
	return le
}

func fixtureName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isFixtureExt(ext string) bool {
	for _, e := range fixtureExts {
		if ext == e {
			return true
		}
	}
	return false
}

// goldenFilePath returns the golden file of a fixture: golden/<name>.golden
// next to the fixture.
func goldenFilePath(fixturePath string) string {
	return filepath.Join(filepath.Dir(fixturePath), "golden", fixtureName(fixturePath)+".golden")
}
