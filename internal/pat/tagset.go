package pat

// TagDef declares one constructor of a tag universe.
type TagDef struct {
	Name  string
	Arity int
}

// TagSet describes the constructor universe a Ctor pattern draws from. Open
// universes can carry tags beyond the declared list, so a switch over them
// always needs a default branch.
type TagSet struct {
	Name string
	Open bool
	Tags []TagDef
}

// Lookup resolves a tag by name.
func (ts *TagSet) Lookup(name string) (TagDef, bool) {
	if ts == nil {
		return TagDef{}, false
	}
	for _, t := range ts.Tags {
		if t.Name == name {
			return t, true
		}
	}
	return TagDef{}, false
}

// RecordShape is the canonical field list of a record type. Partial record
// patterns are expanded against it.
type RecordShape struct {
	Name   string
	Fields []string
}

// Index returns the canonical position of a field, or -1.
func (rs *RecordShape) Index(name string) int {
	if rs == nil {
		return -1
	}
	for i, f := range rs.Fields {
		if f == name {
			return i
		}
	}
	return -1
}
