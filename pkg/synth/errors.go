package synth

import "fmt"

// SynthesisError wraps a failure that occurred while realizing a specific
// commit group, so callers can report which group the pipeline stopped at.
// Per the "no changes have been applied" guarantee of the original
// synthesizer, a SynthesisError always means no ref was moved: every tree
// and commit object built before the failure is an orphaned, harmless git
// object, not a partially-applied history.
type SynthesisError struct {
	GroupIndex int
	Message    string
	Err        error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synth: group %d (%q): %v", e.GroupIndex, e.Message, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
