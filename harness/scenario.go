package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tokentest/de"
	"github.com/roach88/tokentest/token"
)

// Scenario is a fixture: a token sequence that must form a self-describing
// document, or must fail to decode with a given message.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Readable runs the scenario in human-readable mode.
	Readable bool `yaml:"readable,omitempty"`

	// Tokens is the sequence under test.
	Tokens TokenList `yaml:"tokens"`

	// ExpectError, when set, is the exact decode error expected.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ErrInvalidScenario marks a scenario that parsed but is missing required
// content.
var ErrInvalidScenario = errors.New("invalid scenario")

// ParseScenario parses a scenario document. Unknown fields are rejected.
// JSON documents are accepted as well, being valid YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	return &scenario, nil
}

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// MarshalScenario renders s as YAML.
func MarshalScenario(s *Scenario) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Tokens) == 0 {
		return fmt.Errorf("tokens list is required and must be non-empty")
	}

	return nil
}

// Run executes a scenario.
//
// Without expect_error the tokens are decoded through Any, which must
// consume all of them, and the decoded tree must serialize back to the
// identical sequence. With expect_error decoding must fail with exactly
// that message.
//
// The returned error covers invalid scenarios only; check failures are
// reported in the Result.
func Run(s *Scenario, opts ...Option) (*Result, error) {
	if s == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	if err := validateScenario(s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	opts = append([]Option{WithHumanReadable(s.Readable)}, opts...)
	tokens := []token.Token(s.Tokens)
	result := NewResult()

	if s.ExpectError != "" {
		if err := CheckDeTokensError[de.Content](tokens, s.ExpectError, opts...); err != nil {
			result.AddFailure(err)
		}
		return result, nil
	}

	content, err := DecodeTokens[de.Content](tokens, opts...)
	if err != nil {
		result.AddFailure(err)
		return result, nil
	}
	result.Value = content.Value

	if err := CheckSerTokens(content, tokens, opts...); err != nil {
		result.AddFailure(err)
	}
	return result, nil
}
