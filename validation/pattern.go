package validation

import (
	"fmt"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled full-string regular expression rule. Expressions
// use .NET/Perl syntax so lookaheads are available.
type Pattern struct {
	source  string
	message string
	re      *regexp2.Regexp
}

// PatternOption configures NewPattern.
type PatternOption func(*patternConfig)

type patternConfig struct {
	ignoreCase bool
}

// IgnoreCase makes the pattern match case-insensitively.
func IgnoreCase() PatternOption {
	return func(c *patternConfig) { c.ignoreCase = true }
}

// NewPattern compiles expr so that it must match the whole value.
// An empty message selects "Invalid format".
func NewPattern(expr, message string, opts ...PatternOption) (*Pattern, error) {
	var cfg patternConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	flags := regexp2.None
	if cfg.ignoreCase {
		flags |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(`\A(?:`+expr+`)\z`, flags)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", expr, err)
	}

	return &Pattern{source: expr, message: message, re: re}, nil
}

// MustPattern is NewPattern that panics on a bad expression. Use it for
// package-level rule sets.
func MustPattern(expr, message string, opts ...PatternOption) *Pattern {
	p, err := NewPattern(expr, message, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether s matches the whole pattern.
func (p *Pattern) Match(s string) (bool, error) {
	return p.re.MatchString(s)
}

// Message returns the configured failure message.
func (p *Pattern) Message() string { return p.message }

func (p *Pattern) String() string { return p.source }

// EmailExpr is the address shape accepted by the email rule.
const EmailExpr = `[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`

// EmailPattern returns the case-insensitive email rule with message.
func EmailPattern(message string) *Pattern {
	return MustPattern(EmailExpr, message, IgnoreCase())
}
