// Package schema fingerprints user-defined struct/enum types and
// classifies changes between fingerprints as additive or breaking (spec
// §4.6), grounded directly on
// original_source/crates/venus-core/src/state/schema.rs's comparison
// rules.
package schema

import "hash/fnv"

// Fingerprint is a structural snapshot of one user-defined type.
type Fingerprint struct {
	TypeName      string
	StructureHash uint64
	Fields        []string
	FieldTypes    []string
}

// New builds a fingerprint from ordered (name, type) field pairs. The
// hash only needs to be stable within one process lifetime (spec §4.6),
// so FNV-1a is sufficient.
func New(typeName string, fields []FieldSpec) Fingerprint {
	h := fnv.New64a()
	h.Write([]byte(typeName))
	names := make([]string, len(fields))
	types := make([]string, len(fields))
	for i, f := range fields {
		h.Write([]byte(f.Name))
		h.Write([]byte(f.Type))
		names[i] = f.Name
		types[i] = f.Type
	}
	return Fingerprint{
		TypeName:      typeName,
		StructureHash: h.Sum64(),
		Fields:        names,
		FieldTypes:    types,
	}
}

// Primitive builds a fingerprint for a type with no fields.
func Primitive(typeName string) Fingerprint {
	return New(typeName, nil)
}

// FieldSpec is one (name, type) pair used to build a Fingerprint.
type FieldSpec struct {
	Name string
	Type string
}

// ChangeKind classifies a schema change between two fingerprints.
type ChangeKind string

const (
	ChangeNone        ChangeKind = "none"
	ChangeAdditive    ChangeKind = "additive"
	ChangeBreaking    ChangeKind = "breaking"
	ChangeTypeRenamed ChangeKind = "type_renamed"
)

// Change describes a transition from an old fingerprint to a new one.
type Change struct {
	Kind        ChangeKind
	Added       []string
	Removed     []string
	TypeChanges []FieldTypeChange
	OldName     string
	NewName     string
}

type FieldTypeChange struct {
	Field   string
	OldType string
	NewType string
}

// IsBreaking reports whether the change requires invalidating any cached
// output that depended on the type.
func (c Change) IsBreaking() bool {
	return c.Kind == ChangeBreaking
}

func (c Change) Description() string {
	switch c.Kind {
	case ChangeNone:
		return "no change"
	case ChangeAdditive:
		return "additive: added " + joinOrNone(c.Added)
	case ChangeTypeRenamed:
		return "type renamed: " + c.OldName + " -> " + c.NewName
	default:
		return "breaking change"
	}
}

func joinOrNone(xs []string) string {
	if len(xs) == 0 {
		return "(none)"
	}
	out := xs[0]
	for _, x := range xs[1:] {
		out += ", " + x
	}
	return out
}

// Compare classifies the transition from old to new. A change in the
// relative order of the fields both versions share also counts as
// breaking, even when fields were added alongside it. ChangeTypeRenamed is
// only reported when the field names and types are byte-for-byte
// identical in both content and order - a rename bundled with any field
// change is classified by its structural effect instead, never masked as
// a plain rename.
func Compare(old, new Fingerprint) Change {
	if old.StructureHash == new.StructureHash {
		return Change{Kind: ChangeNone}
	}

	if old.TypeName != new.TypeName && sameSequence(old.Fields, new.Fields) && sameSequence(old.FieldTypes, new.FieldTypes) {
		return Change{Kind: ChangeTypeRenamed, OldName: old.TypeName, NewName: new.TypeName}
	}

	oldSet := toSet(old.Fields)
	newSet := toSet(new.Fields)

	var added, removed, oldShared, newShared []string
	for _, f := range new.Fields {
		if !oldSet[f] {
			added = append(added, f)
		} else {
			newShared = append(newShared, f)
		}
	}
	for _, f := range old.Fields {
		if !newSet[f] {
			removed = append(removed, f)
		} else {
			oldShared = append(oldShared, f)
		}
	}

	var typeChanges []FieldTypeChange
	for i, field := range old.Fields {
		newIdx := indexOf(new.Fields, field)
		if newIdx < 0 {
			continue
		}
		if old.FieldTypes[i] != new.FieldTypes[newIdx] {
			typeChanges = append(typeChanges, FieldTypeChange{
				Field:   field,
				OldType: old.FieldTypes[i],
				NewType: new.FieldTypes[newIdx],
			})
		}
	}

	switch {
	case len(removed) > 0 || len(typeChanges) > 0:
		return Change{Kind: ChangeBreaking, Added: added, Removed: removed, TypeChanges: typeChanges}
	case !sameSequence(oldShared, newShared):
		// Shared fields moved relative to each other: field reordering.
		return Change{Kind: ChangeBreaking, Added: added}
	case len(added) > 0:
		return Change{Kind: ChangeAdditive, Added: added}
	default:
		// No field-level difference found, but the hash differs.
		return Change{Kind: ChangeBreaking}
	}
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func indexOf(xs []string, target string) int {
	for i, x := range xs {
		if x == target {
			return i
		}
	}
	return -1
}

func sameSequence(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
