package harness

import (
	"errors"

	"github.com/roach88/tokentest/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success.
	Pass bool `json:"pass"`

	// Errors contains check failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Kinds holds the failure kind of each entry in Errors.
	Kinds []Failure `json:"kinds,omitempty"`

	// Value is the tree decoded from the tokens, nil for expect_error
	// scenarios or when decoding failed.
	Value ir.Value `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Kinds = append(r.Kinds, FailCustom)
	r.Pass = false
}

// AddFailure records err, keeping its failure kind when it has one.
func (r *Result) AddFailure(err error) {
	kind := FailCustom
	var ae *AssertionError
	if errors.As(err, &ae) {
		kind = ae.Kind
	}
	r.Errors = append(r.Errors, err.Error())
	r.Kinds = append(r.Kinds, kind)
	r.Pass = false
}

// Canonical returns the canonical JSON of the decoded tree, or nil when
// there is none.
func (r *Result) Canonical() ([]byte, error) {
	if r.Value == nil {
		return nil, nil
	}
	return ir.MarshalCanonical(r.Value)
}
