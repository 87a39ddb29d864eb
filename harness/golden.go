package harness

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tokentest/ser"
	"github.com/roach88/tokentest/token"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// AssertGolden records the tokens v serializes to and compares their
// listing against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./... -update
//
// Returns error if v fails to serialize.
func AssertGolden(t *testing.T, name string, v ser.Serialize, opts ...Option) error {
	t.Helper()

	tokens, err := Record(v, opts...)
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, name, []byte(token.Format(tokens)))
	return nil
}

// RunWithGolden runs a scenario and compares the canonical JSON of the
// decoded tree against testdata/golden/{scenario.Name}.golden.
//
// Returns error if the scenario fails or has no decoded tree.
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) error {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}

	data, err := result.Canonical()
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("scenario %s has no decoded value to snapshot", scenario.Name)
	}

	newGoldie(t).Assert(t, scenario.Name, data)
	return nil
}
