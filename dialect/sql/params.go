package sql

import (
	"sort"
	"strconv"
	"strings"
)

// ParamPrefix is the prefix of generated placeholder names.
const ParamPrefix = "qp"

// Params is the ordered placeholder table accumulated through one compile
// pass. Placeholder names are generated from a monotonically increasing
// counter, so they are unique within a single (SQL, params) result even when
// each clause is compiled through a separate call into the same table.
//
// A Params value is append-only during compilation and is not safe for
// concurrent use; each compile pass owns its own table.
type Params struct {
	names  []string
	values map[string]any
	n      int
}

// NewParams returns an empty parameter table.
func NewParams() *Params {
	return &Params{values: make(map[string]any)}
}

// Merge adds caller-supplied parameters to the table, keeping generated
// indices clear of externally fixed names. Names may carry a leading colon.
// Map iteration order is not stable, so names are merged in sorted order.
func (p *Params) Merge(params map[string]any) {
	if len(params) == 0 {
		return
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p.Set(name, params[name])
	}
}

// Set binds a value under an explicit name, overwriting any previous binding.
func (p *Params) Set(name string, v any) {
	name = strings.TrimPrefix(name, ":")
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = v
}

// Bind appends a value under the next generated name and returns its
// placeholder, e.g. ":qp3". Generated names skip over any colliding names
// merged from the caller.
func (p *Params) Bind(v any) string {
	for {
		name := ParamPrefix + strconv.Itoa(p.n)
		p.n++
		if _, ok := p.values[name]; ok {
			continue
		}
		p.names = append(p.names, name)
		p.values[name] = v
		return ":" + name
	}
}

// Get returns the value bound under name.
func (p *Params) Get(name string) (any, bool) {
	v, ok := p.values[strings.TrimPrefix(name, ":")]
	return v, ok
}

// Len returns the number of bound parameters.
func (p *Params) Len() int { return len(p.names) }

// Names returns the bound names in binding order, without the colon prefix.
func (p *Params) Names() []string {
	names := make([]string, len(p.names))
	copy(names, p.names)
	return names
}

// Values returns the bound values keyed by name.
func (p *Params) Values() map[string]any {
	values := make(map[string]any, len(p.names))
	for name, v := range p.values {
		values[name] = v
	}
	return values
}

// Out marks an output parameter bound by RETURNING-INTO emulation. The
// finalized argument list carries it as a named sql.Out destination.
type Out struct {
	Name string
	Dest any
}
