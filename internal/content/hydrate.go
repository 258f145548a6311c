package content

import (
	"encoding/json"
	"fmt"
)

// FieldIssue explains why one top-level field fell back to its default.
type FieldIssue struct {
	Field  string
	Reason string
}

// Validation is the outcome of checking a persisted blob. Tree always holds
// a usable value; Issues lists every field that was replaced by its default.
type Validation struct {
	Tree   Tree
	Issues []FieldIssue
}

// Valid reports whether every field came from the persisted blob.
func (v Validation) Valid() bool {
	return len(v.Issues) == 0
}

// FieldRule decides whether one top-level field of a persisted blob is
// usable. A field is used when it decodes into the expected shape and has
// at least MinItems entries; otherwise the default value is substituted.
type FieldRule struct {
	Field    string
	MinItems int

	decode func(raw json.RawMessage, dst *Tree) (int, error)
	reset  func(dst *Tree, def Tree)
}

func collectionRule[T any](field string, minItems int, slot func(*Tree) *[]T) FieldRule {
	return FieldRule{
		Field:    field,
		MinItems: minItems,
		decode: func(raw json.RawMessage, dst *Tree) (int, error) {
			var items []T
			if err := json.Unmarshal(raw, &items); err != nil {
				return 0, err
			}
			*slot(dst) = items
			return len(items), nil
		},
		reset: func(dst *Tree, def Tree) {
			*slot(dst) = *slot(&def)
		},
	}
}

// HydrationRules is the per-field fallback policy. Rooms need two entries to
// count as present: a single saved room falls back to the full default list.
var HydrationRules = []FieldRule{
	collectionRule("galleryImages", 1, func(t *Tree) *[]GalleryImage { return &t.GalleryImages }),
	collectionRule("sectionBackgrounds", 1, func(t *Tree) *[]SectionBackground { return &t.SectionBackgrounds }),
	collectionRule("wineCollection", 1, func(t *Tree) *[]WineItem { return &t.WineCollection }),
	collectionRule("rooms", 2, func(t *Tree) *[]Room { return &t.Rooms }),
	collectionRule("events", 1, func(t *Tree) *[]Event { return &t.Events }),
	{
		Field:    "siteContent",
		MinItems: 1,
		decode: func(raw json.RawMessage, dst *Tree) (int, error) {
			var sc SiteContent
			if err := json.Unmarshal(raw, &sc); err != nil {
				return 0, err
			}
			dst.SiteContent = sc
			if sc.IsZero() {
				return 0, nil
			}
			return 1, nil
		},
		reset: func(dst *Tree, def Tree) { dst.SiteContent = def.SiteContent },
	},
}

// Validate applies HydrationRules to a persisted blob. A nil or unparsable
// blob yields the full default tree.
func Validate(raw []byte) Validation {
	def := DefaultTree()
	if len(raw) == 0 {
		return allDefault(def, "not persisted")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return allDefault(def, "unparsable: "+err.Error())
	}
	if fields == nil {
		return allDefault(def, "not an object")
	}

	v := Validation{}
	for _, rule := range HydrationRules {
		reason := ""
		fieldRaw, ok := fields[rule.Field]
		switch {
		case !ok || string(fieldRaw) == "null":
			reason = "missing"
		default:
			n, err := rule.decode(fieldRaw, &v.Tree)
			switch {
			case err != nil:
				reason = "wrong shape: " + err.Error()
			case n < rule.MinItems:
				reason = fmt.Sprintf("has %d entries, needs %d", n, rule.MinItems)
			}
		}
		if reason != "" {
			rule.reset(&v.Tree, def)
			v.Issues = append(v.Issues, FieldIssue{Field: rule.Field, Reason: reason})
		}
	}
	return v
}

func allDefault(def Tree, reason string) Validation {
	v := Validation{Tree: def}
	for _, rule := range HydrationRules {
		v.Issues = append(v.Issues, FieldIssue{Field: rule.Field, Reason: reason})
	}
	return v
}

// Hydrate loads the blob stored under key in b and validates it. A backend
// read error is treated like an absent blob.
func Hydrate(b Backend, key string) Validation {
	raw, ok, err := b.Load(key)
	if err != nil || !ok {
		raw = nil
	}
	return Validate(raw)
}
