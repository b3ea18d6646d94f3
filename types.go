package paramshape

// DefaultMaxDepth bounds recursion into nested shapes, arrays and unions.
const DefaultMaxDepth = 10

// Result is the outcome of a validation call.
// Params is populated only for subtrees that produced no issues.
type Result struct {
	Issues Issues
	Params map[string]any
}

// OK reports whether the input was accepted in full.
func (r Result) OK() bool { return len(r.Issues) == 0 }

// Err returns the issues as an error, or nil when the input was accepted.
func (r Result) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	return r.Issues
}
