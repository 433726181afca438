package urltemplate

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"record-collection/core/utils"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// ErrUnterminated is returned for a template with an opening brace but no
// closing one.
var ErrUnterminated = errors.New("urltemplate: unterminated placeholder")

// Resolver evaluates placeholders in URL templates.
type Resolver struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
	escape   bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithoutEscape inserts placeholder values verbatim instead of path-escaping
// them.
func WithoutEscape() Option {
	return func(r *Resolver) {
		r.escape = false
	}
}

// New creates a resolver that path-escapes placeholder values.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		programs: make(map[string]*vm.Program),
		escape:   true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Resolve replaces every {expression} in template with its value evaluated
// against params. Nil values resolve to the empty string.
func (r *Resolver) Resolve(template string, params map[string]any) (string, error) {
	if !strings.Contains(template, "{") {
		return template, nil
	}

	var b strings.Builder
	rest := template
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w in %q", ErrUnterminated, template)
		}
		b.WriteString(rest[:open])

		source := strings.TrimSpace(rest[open+1 : open+end])
		value, err := r.eval(source, params)
		if err != nil {
			return "", err
		}
		if r.escape {
			value = url.PathEscape(value)
		}
		b.WriteString(value)

		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

func (r *Resolver) eval(source string, params map[string]any) (string, error) {
	if source == "" {
		return "", fmt.Errorf("urltemplate: empty placeholder")
	}
	program, err := r.compile(source)
	if err != nil {
		return "", err
	}

	env := params
	if env == nil {
		env = map[string]any{}
	}
	out, err := expr.Run(program, env)
	if err != nil {
		return "", fmt.Errorf("urltemplate: failed to evaluate %q: %w", source, err)
	}
	return utils.ToString(out), nil
}

func (r *Resolver) compile(source string) (*vm.Program, error) {
	r.mu.RLock()
	program, ok := r.programs[source]
	r.mu.RUnlock()
	if ok {
		return program, nil
	}

	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("urltemplate: failed to compile %q: %w", source, err)
	}

	r.mu.Lock()
	r.programs[source] = program
	r.mu.Unlock()
	return program, nil
}
