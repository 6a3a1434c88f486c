package harness

import (
	"time"
)

// Result is the outcome of one check.
type Result struct {
	Check    string
	Entry    string
	Passed   bool
	Failures []error
	Modules  int
	Duration time.Duration
}

func (r *Result) fail(err error) {
	r.Failures = append(r.Failures, err)
}

// Report collects the results of a manifest run.
type Report struct {
	Results []*Result
}

// Passed reports whether every check passed. An empty report does not pass.
func (r *Report) Passed() bool {
	if len(r.Results) == 0 {
		return false
	}
	for _, res := range r.Results {
		if !res.Passed {
			return false
		}
	}
	return true
}

// Failed returns the number of failing checks.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.Passed {
			n++
		}
	}
	return n
}

// Result returns the result for the named check.
func (r *Report) Result(name string) (*Result, bool) {
	for _, res := range r.Results {
		if res.Check == name {
			return res, true
		}
	}
	return nil, false
}
