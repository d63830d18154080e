package projection

import (
	"fmt"
	"strings"
)

// TargetDimensions is the fixed output dimensionality of the projection.
const TargetDimensions = 3

// MinimumInputs is the smallest vector set a projection accepts. Fewer inputs
// is a fatal input error, not a degraded mode; callers must reject before
// invoking the adapter.
const MinimumInputs = 3

// DefaultMinDist is the fixed minimum-distance parameter handed to reducers
// that honor one. It is part of the projection contract.
const DefaultMinDist = 0.1

// Params configures a projection run. Optional fields default via
// SetDefaultsAndValidate; the defaults are contract constants and must not
// drift between runs.
type Params struct {
	Neighbors    *int     // optional; defaults to clamp(2, n-1, 15)
	MinDist      *float64 // optional; defaults to DefaultMinDist
	Iterations   *int     // optional; defaults to 100
	LearningRate *int     // optional; defaults to 25
}

// SetDefaultsAndValidate fills unset parameters from the contract defaults
// and validates the result against the input size.
func (p *Params) SetDefaultsAndValidate(inputSize int) error {
	p.setDefaults(inputSize)
	return p.validate(inputSize)
}

func (p *Params) setDefaults(inputSize int) {
	p.Neighbors = optionalInt(p.Neighbors, clampInt(2, inputSize-1, 15))
	p.MinDist = optionalFloat(p.MinDist, DefaultMinDist)
	p.Iterations = optionalInt(p.Iterations, 100)
	p.LearningRate = optionalInt(p.LearningRate, 25)
}

func (p *Params) validate(inputSize int) error {
	ec := &errorCompounder{}
	if inputSize < MinimumInputs {
		ec.addf("at least %d vectors required, got %d", MinimumInputs, inputSize)
	}
	if *p.Neighbors >= inputSize {
		ec.addf("neighbors must be smaller than amount of items: %d >= %d", *p.Neighbors, inputSize)
	}
	if *p.Neighbors < 2 {
		ec.addf("neighbors must be at least 2, got: %d", *p.Neighbors)
	}
	if *p.MinDist <= 0 {
		ec.addf("minDist must be positive, got: %v", *p.MinDist)
	}
	if *p.Iterations < 1 {
		ec.addf("iterations must be at least 1, got: %d", *p.Iterations)
	}
	if *p.LearningRate < 1 {
		ec.addf("learningRate must be at least 1, got: %d", *p.LearningRate)
	}
	return ec.toError()
}

func optionalInt(in *int, defaultValue int) *int {
	if in == nil {
		return &defaultValue
	}
	return in
}

func optionalFloat(in *float64, defaultValue float64) *float64 {
	if in == nil {
		return &defaultValue
	}
	return in
}

func clampInt(lo, v, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type errorCompounder struct {
	errors []string
}

func (ec *errorCompounder) addf(msg string, args ...interface{}) {
	ec.errors = append(ec.errors, fmt.Sprintf(msg, args...))
}

func (ec *errorCompounder) toError() error {
	if len(ec.errors) == 0 {
		return nil
	}
	return fmt.Errorf("projection: %s", strings.Join(ec.errors, ", "))
}
