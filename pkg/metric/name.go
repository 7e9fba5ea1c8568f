package metric

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logfmt/logfmt"
)

type metadata map[string]string

// Name identifies a summary value produced by a sampling run, such as poisson_k.  Metadata groups
// values from the same run, for example the lambda and seed used.  Names are marshalled to a
// string using a modified logfmt, e.g. poisson_k[lambda=0.2 seed=5979229 value=mean]
type Name struct {
	name string
	md   metadata
}

// String marshals the name to a string representation, such as poisson_k[lambda=0.2 value=max]
func (n Name) String() string {
	md, err := MarshalText(n.md)
	if err != nil {
		md = []byte{}
	}
	return n.name + string(md)
}

// Base returns the name without metadata
func (n Name) Base() string {
	return n.name
}

// NewName returns a new name with the associated metadata
func NewName(name string, md map[string]string) Name {
	if md == nil {
		md = make(map[string]string)
	}
	return Name{name: name, md: md}
}

// AddMetadata upserts md into the metadata map
func (n Name) AddMetadata(md map[string]string) {
	for k, v := range md {
		n.md[k] = v
	}
}

// With returns a copy of the name with md added, leaving the receiver unchanged
func (n Name) With(md map[string]string) Name {
	c := NewNameFrom(n)
	c.AddMetadata(md)
	return c
}

// MarshalText will return the metadata encoded as a modified logfmt representation.  Metadata opens with a [
// then is followed by (key, value) pairs k=v in sorted key order, then by annotations starting with @ in
// sorted order.  Close with a ].  Example: [lambda=0.2 seed=1 @bounded]
func MarshalText(m metadata) ([]byte, error) {
	if len(m) == 0 {
		return []byte{}, nil
	}
	keys := make([]string, 0, len(m))
	ann := make([]string, 0, len(m))
	for k, v := range m {
		switch v {
		case "":
			ann = append(ann, fmt.Sprintf("@%s", k))
		default:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	sort.Strings(ann)

	var b bytes.Buffer
	b.WriteString("[")
	e := logfmt.NewEncoder(&b)
	for _, k := range keys {
		if err := e.EncodeKeyval(k, m[k]); err != nil {
			return nil, fmt.Errorf("failed to encode %s=%s: %w", k, m[k], err)
		}
	}
	if len(keys) > 0 && len(ann) > 0 {
		b.WriteString(" ")
	}
	if len(ann) > 0 {
		b.WriteString(strings.Join(ann, " "))
	}
	b.WriteString("]")
	return b.Bytes(), nil
}

// NewNameFrom returns a deep copy of n
func NewNameFrom(n Name) Name {
	copiedMD := make(map[string]string, len(n.md))
	for k, v := range n.md {
		copiedMD[k] = v
	}
	return NewName(n.name, copiedMD)
}
