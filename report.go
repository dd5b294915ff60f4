package fleetctl

import "strings"

// Report is the result of one command against one instance
type Report struct {
	// ID is the instance id
	ID string
	// Op is the command that ran
	Op Operation
	// Outcomes lists the completed steps in order, e.g. stopped, started
	Outcomes []Outcome
	// Status is set for status commands
	Status *Status
	// Err is set when any step failed
	Err error
}

func (r *Report) add(o Outcome) {
	if o != OutcomeNone {
		r.Outcomes = append(r.Outcomes, o)
	}
}

// Failed reports whether the command hit an error
func (r Report) Failed() bool {
	return r.Err != nil
}

// String renders the report as "<id>: <outcomes>" or "<id>: <status>".
// Errors are not included; see Err.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString(r.ID)
	b.WriteString(": ")
	if r.Status != nil {
		b.WriteString(r.Status.String())
		if !r.Status.Enabled {
			b.WriteString(", disabled")
		}
		return b.String()
	}
	for i, o := range r.Outcomes {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(o.String())
	}
	return b.String()
}

// Reports is the ordered result of a dispatched command
type Reports []Report

// Err aggregates the per-instance failures, nil when every command succeeded
func (rs Reports) Err() error {
	merr := &MultiError{}
	for _, r := range rs {
		merr.Add(r.Err)
	}
	return merr.Err()
}
