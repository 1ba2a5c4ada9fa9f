package filter

import (
	"errors"
	"fmt"
)

// Path identifies the granularity of a request: a whole column family, one
// nested group inside it, or a single column.
type Path struct {
	Family string
	Group  []byte
	Column []byte
}

// NewPath returns a path addressing the whole family.
func NewPath(family string) Path {
	return Path{Family: family}
}

// NewGroupPath returns a path addressing one nested group.
func NewGroupPath(family string, group []byte) Path {
	return Path{Family: family, Group: group}
}

// NewColumnPath returns a path addressing a single column, optionally nested
// inside a group.
func NewColumnPath(family string, group, column []byte) Path {
	return Path{Family: family, Group: group, Column: column}
}

func (p Path) validate() error {
	var errGrp []error
	if p.Family == "" {
		errGrp = append(errGrp, errors.New("family is required"))
	}
	return errors.Join(errGrp...)
}

func (p Path) String() string {
	switch {
	case len(p.Column) > 0:
		return fmt.Sprintf("%s/%s/%s", p.Family, p.Group, p.Column)
	case len(p.Group) > 0:
		return fmt.Sprintf("%s/%s", p.Family, p.Group)
	default:
		return p.Family
	}
}
