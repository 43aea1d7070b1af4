package models

// Patch is a partial update. Set replaces scalar fields; AddToSet unions the
// given values into list-valued fields without duplicating existing entries.
type Patch struct {
	Set      map[string]any
	AddToSet map[string][]string
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Set) == 0 && len(p.AddToSet) == 0
}

// SetField records a scalar replacement and returns the patch for chaining.
func (p *Patch) SetField(field string, value any) *Patch {
	if p.Set == nil {
		p.Set = make(map[string]any)
	}
	p.Set[field] = value
	return p
}

// Add records values to union into a list field.
func (p *Patch) Add(field string, values ...string) *Patch {
	if p.AddToSet == nil {
		p.AddToSet = make(map[string][]string)
	}
	p.AddToSet[field] = append(p.AddToSet[field], values...)
	return p
}

// MergeUnique appends each value in add that is not already present in base.
// Order of base is kept, new values follow in the order given.
func MergeUnique(base []string, add ...string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, v := range base {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range add {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
