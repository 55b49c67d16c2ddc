package stageclient

import (
	"fmt"
	"net/url"
	"strings"
)

// Parameter is an immutable name/value pair used for query and form
// parameters.  Two parameters with the same name and value are equal.
type Parameter struct {
	Name  string
	Value string
}

// NewParam creates a Parameter, rejecting blank names.  Values may be
// empty, since "?flag=" is a legal query string.
func NewParam(name, value string) (Parameter, error) {
	if strings.TrimSpace(name) == "" {
		return Parameter{}, ErrBlankName
	}

	return Parameter{Name: name, Value: value}, nil
}

// Param is the must variant of NewParam: it panics on a blank name.
// Intended for fluent call sites where the name is a literal.
func Param(name, value string) Parameter {
	p, err := NewParam(name, value)
	if err != nil {
		panic(err)
	}

	return p
}

// Encode renders this parameter in application/x-www-form-urlencoded form
func (p Parameter) Encode() string {
	return url.QueryEscape(p.Name) + "=" + url.QueryEscape(p.Value)
}

// String satisfies fmt.Stringer
func (p Parameter) String() string {
	return fmt.Sprintf("Parameter{name: %s, value: %s}", p.Name, p.Value)
}
