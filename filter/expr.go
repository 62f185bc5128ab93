package filter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// exprFilter is a compiled expr program
type exprFilter struct {
	expression string
	program    *vm.Program
	helpers    map[string]any
}

// CompilerOption tunes NewCompiler
type CompilerOption func(*ExprCompiler)

// WithCache keeps up to size compiled filters, keyed by expression text
func WithCache(size int) CompilerOption {
	return func(c *ExprCompiler) {
		if size > 0 {
			c.cache = newLRUCache[CompiledFilter](size)
		}
	}
}

// WithCustomFunctions makes extra functions callable from expressions
func WithCustomFunctions(funcs map[string]any) CompilerOption {
	return func(c *ExprCompiler) {
		maps.Copy(c.funcs, funcs)
	}
}

// NewCompiler creates a new expr-based filter compiler
func NewCompiler(opts ...CompilerOption) *ExprCompiler {
	c := &ExprCompiler{
		funcs: baseHelpers(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExprCompiler implements Compiler for expr-based filters
type ExprCompiler struct {
	funcs map[string]any
	cache *lruCache[CompiledFilter]
}

// Compile type-checks expression against the helper set. Item fields are
// unknown until evaluation, so any identifier is accepted.
func (c *ExprCompiler) Compile(expression string) (CompiledFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, &CompilationError{Expression: expression, Message: "empty expression"}
	}

	if c.cache != nil {
		if cached, ok := c.cache.Get(expression); ok {
			return cached, nil
		}
	}

	// Item-bound helpers are declared with placeholder values for type checking.
	env := maps.Clone(c.funcs)
	maps.Copy(env, itemHelpers(nil))

	program, err := expr.Compile(expression,
		expr.Env(env),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, compilationError(expression, err)
	}

	compiled := &exprFilter{expression: expression, program: program, helpers: c.funcs}
	if c.cache != nil {
		c.cache.Put(expression, compiled)
	}
	return compiled, nil
}

// Clear empties the cache
func (c *ExprCompiler) Clear() {
	if c.cache != nil {
		c.cache.Clear()
	}
}

// Size reports how many compiled filters are cached
func (c *ExprCompiler) Size() int {
	if c.cache != nil {
		return c.cache.Len()
	}
	return 0
}

// Match evaluates the filter, treating evaluation errors as no match
func (f *exprFilter) Match(item Item) bool {
	ok, err := f.Eval(item)
	return err == nil && ok
}

// Eval evaluates the filter against item
func (f *exprFilter) Eval(item Item) (bool, error) {
	result, err := expr.Run(f.program, f.environment(item))
	if err != nil {
		return false, &EvaluationError{Expression: f.expression, Err: err}
	}
	// Undefined fields evaluate to nil rather than false
	matched, _ := result.(bool)
	return matched, nil
}

// Expression returns the source text
func (f *exprFilter) Expression() string {
	return f.expression
}

func (f *exprFilter) environment(item Item) map[string]any {
	env := make(map[string]any, len(item)+len(f.helpers)+8)
	maps.Copy(env, item)
	maps.Copy(env, f.helpers)
	maps.Copy(env, itemHelpers(item))
	env["Item"] = item
	return env
}

// baseHelpers are the item-independent functions available to every filter
func baseHelpers() map[string]any {
	funcs := make(map[string]any, 16)

	// Case-insensitive string matching. contains, startsWith and endsWith
	// are expr operators and stay case-sensitive.
	funcs["hasText"] = func(str, substr string) bool {
		return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
	}
	funcs["hasPrefix"] = func(str, prefix string) bool {
		return strings.HasPrefix(strings.ToLower(str), strings.ToLower(prefix))
	}
	funcs["hasSuffix"] = func(str, suffix string) bool {
		return strings.HasSuffix(strings.ToLower(str), strings.ToLower(suffix))
	}
	funcs["lower"] = strings.ToLower
	funcs["upper"] = strings.ToUpper

	// Date helpers; OMOP dates are YYYY-MM-DD
	funcs["parseDate"] = func(dateStr string) time.Time {
		t, _ := time.Parse(time.DateOnly, dateStr)
		return t
	}
	funcs["yearsAgo"] = func(years int) time.Time {
		return time.Now().AddDate(-years, 0, 0)
	}
	funcs["now"] = time.Now

	return funcs
}

// itemHelpers returns helpers bound to one item's fields.
func itemHelpers(item Item) map[string]any {
	vocabulary := stringField(item, "vocabulary_id")
	domain := stringField(item, "domain_id")
	standard := stringField(item, "standard_concept")
	invalid := stringField(item, "invalid_reason")

	return map[string]any{
		"inVocab": func(vocabularies ...string) bool {
			return slices.ContainsFunc(vocabularies, func(v string) bool {
				return strings.EqualFold(v, vocabulary)
			})
		},
		"inDomain": func(domains ...string) bool {
			return slices.ContainsFunc(domains, func(d string) bool {
				return strings.EqualFold(d, domain)
			})
		},
		"isStandard": func() bool {
			return standard == "S"
		},
		"isClassification": func() bool {
			return standard == "C"
		},
		"isValid": func() bool {
			return invalid == ""
		},
	}
}

func stringField(item Item, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
