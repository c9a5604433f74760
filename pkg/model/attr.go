package model

import "slices"

// Attr is a single XML attribute kept verbatim.
type Attr struct {
	Name  string
	Value string
}

// Attrs is an ordered attribute list. Order is preserved on write.
type Attrs []Attr

// Get returns the value of the named attribute.
func (a Attrs) Get(name string) (string, bool) {
	for _, attr := range a {
		if attr.Name == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Value returns the named attribute's value, or "" when absent.
func (a Attrs) Value(name string) string {
	v, _ := a.Get(name)
	return v
}

// Set replaces the named attribute in place, or appends it.
func (a *Attrs) Set(name, value string) {
	for i := range *a {
		if (*a)[i].Name == name {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Name: name, Value: value})
}

// Delete removes the named attribute and reports whether it was present.
func (a *Attrs) Delete(name string) bool {
	i := slices.IndexFunc(*a, func(attr Attr) bool { return attr.Name == name })
	if i < 0 {
		return false
	}
	*a = slices.Delete(*a, i, i+1)
	return true
}

// Clone returns a copy of a.
func (a Attrs) Clone() Attrs {
	return slices.Clone(a)
}
