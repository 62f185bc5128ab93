package filter

// Item is one result record, such as a decoded concept. Its top-level keys
// are exposed to expressions as variables.
type Item = map[string]any

// Filter decides whether an item is kept
type Filter interface {
	// Match reports whether item satisfies the filter
	Match(item Item) bool
}

// CompiledFilter represents a pre-compiled filter ready for evaluation
type CompiledFilter interface {
	Filter

	// Expression returns the original filter expression
	Expression() string

	// Eval is Match with the evaluation error, if any, reported
	Eval(item Item) (bool, error)
}

// Compiler compiles filter expressions into executable filters
type Compiler interface {
	// Compile parses and compiles a filter expression
	Compile(expression string) (CompiledFilter, error)
}
