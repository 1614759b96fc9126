package registry

// ParsedArgs holds the resolved option values and positional arguments of
// one invocation. It is built by the dispatcher and read-only afterwards.
type ParsedArgs struct {
	values     map[string]any
	given      map[string]bool
	positional []string
}

// String returns the value of a string option, or "" if it is not declared.
func (p ParsedArgs) String(name string) string {
	s, _ := p.values[name].(string)
	return s
}

// Int returns the value of an int option, or 0 if it is not declared.
func (p ParsedArgs) Int(name string) int {
	n, _ := p.values[name].(int)
	return n
}

// Bool returns the value of a bool or flag option.
func (p ParsedArgs) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

// Has reports whether the option was supplied on the command line rather
// than filled from its default.
func (p ParsedArgs) Has(name string) bool {
	return p.given[name]
}

// Args returns a copy of the positional arguments.
func (p ParsedArgs) Args() []string {
	return append([]string(nil), p.positional...)
}

// Arg returns the i-th positional argument, or "" if absent.
func (p ParsedArgs) Arg(i int) string {
	if i < 0 || i >= len(p.positional) {
		return ""
	}
	return p.positional[i]
}

// NArg returns the number of positional arguments.
func (p ParsedArgs) NArg() int { return len(p.positional) }
