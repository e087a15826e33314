package tui

import "strings"

// selector is a single-choice row cycled with left/right.
type selector struct {
	options []string
}

func newSelector[T ~string](values []T) selector {
	opts := make([]string, len(values))
	for i, v := range values {
		opts[i] = string(v)
	}
	return selector{options: opts}
}

// step returns the option delta positions away from current, wrapping around.
func (s selector) step(current string, delta int) string {
	idx := 0
	for i, o := range s.options {
		if o == current {
			idx = i
			break
		}
	}
	n := len(s.options)
	return s.options[((idx+delta)%n+n)%n]
}

func (s selector) render(current string) string {
	parts := make([]string, len(s.options))
	for i, o := range s.options {
		if o == current {
			parts[i] = selectedOptionStyle.Render(o)
		} else {
			parts[i] = optionStyle.Render(o)
		}
	}
	return strings.Join(parts, " ")
}
