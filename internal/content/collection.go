package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
)

var (
	// ErrNotFound is returned when no item carries the requested id.
	ErrNotFound = errors.New("item not found")
	// ErrOutOfRange is returned by Reorder for indices outside the collection.
	ErrOutOfRange = errors.New("index out of range")
	// ErrUnknownCollection is returned by Lookup.
	ErrUnknownCollection = errors.New("unknown collection")
)

// Collection addresses one top-level list of the Tree. All mutations go
// through the Store and yield a new slice; the previous one is not touched.
type Collection[T any] struct {
	name  string
	slot  func(*Tree) *[]T
	id    func(T) string
	dedup func(T) string

	// nextID assigns an id to an added item whose id is unset. Nil for
	// collections keyed by a fixed name.
	nextID func(item T, existing []T) T
	// restamp rewrites position-derived fields after a structural change.
	restamp func([]T)
	// clone copies the nested slices of an item handed to a patch. Nil for
	// flat item types.
	clone func(T) T
}

// The collections of a Tree.
var (
	Gallery = Collection[GalleryImage]{
		name:  "galleryImages",
		slot:  func(t *Tree) *[]GalleryImage { return &t.GalleryImages },
		id:    func(g GalleryImage) string { return strconv.Itoa(g.ID) },
		dedup: func(g GalleryImage) string { return g.URL },
		nextID: func(g GalleryImage, all []GalleryImage) GalleryImage {
			if g.ID == 0 {
				g.ID = maxID(all, func(x GalleryImage) int { return x.ID }) + 1
			}
			return g
		},
		restamp: func(items []GalleryImage) {
			for i := range items {
				items[i].Order = i
			}
		},
	}

	Backgrounds = Collection[SectionBackground]{
		name:  "sectionBackgrounds",
		slot:  func(t *Tree) *[]SectionBackground { return &t.SectionBackgrounds },
		id:    func(b SectionBackground) string { return string(b.Section) },
		dedup: func(b SectionBackground) string { return string(b.Section) },
	}

	Wines = Collection[WineItem]{
		name:  "wineCollection",
		slot:  func(t *Tree) *[]WineItem { return &t.WineCollection },
		id:    func(w WineItem) string { return strconv.Itoa(w.ID) },
		dedup: func(w WineItem) string { return strconv.Itoa(w.ID) },
		nextID: func(w WineItem, all []WineItem) WineItem {
			if w.ID == 0 {
				w.ID = maxID(all, func(x WineItem) int { return x.ID }) + 1
			}
			return w
		},
	}

	Rooms = Collection[Room]{
		name:  "rooms",
		slot:  func(t *Tree) *[]Room { return &t.Rooms },
		id:    func(r Room) string { return strconv.Itoa(r.ID) },
		dedup: func(r Room) string { return strconv.Itoa(r.ID) },
		nextID: func(r Room, all []Room) Room {
			if r.ID == 0 {
				r.ID = maxID(all, func(x Room) int { return x.ID }) + 1
			}
			return r
		},
		clone: func(r Room) Room {
			r.Images = slices.Clone(r.Images)
			r.Amenities = slices.Clone(r.Amenities)
			return r
		},
	}

	Events = Collection[Event]{
		name:  "events",
		slot:  func(t *Tree) *[]Event { return &t.Events },
		id:    func(e Event) string { return strconv.Itoa(e.ID) },
		dedup: func(e Event) string { return strconv.Itoa(e.ID) },
		nextID: func(e Event, all []Event) Event {
			if e.ID == 0 {
				e.ID = maxID(all, func(x Event) int { return x.ID }) + 1
			}
			return e
		},
	}
)

func maxID[T any](items []T, id func(T) int) int {
	m := 0
	for _, it := range items {
		if v := id(it); v > m {
			m = v
		}
	}
	return m
}

// Name returns the collection's field name in the persisted tree.
func (c Collection[T]) Name() string { return c.name }

// Items returns a copy of the current items.
func (c Collection[T]) Items(s *Store) []T {
	t := s.Tree()
	return slices.Clone(*c.slot(&t))
}

// Len returns the number of items.
func (c Collection[T]) Len(s *Store) int {
	t := s.Tree()
	return len(*c.slot(&t))
}

// IDs returns item ids in array order.
func (c Collection[T]) IDs(s *Store) []string {
	t := s.Tree()
	items := *c.slot(&t)
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = c.id(it)
	}
	return ids
}

func (c Collection[T]) mutate(s *Store, fn func([]T) ([]T, error)) error {
	return s.apply(func(t Tree) (Tree, error) {
		next, err := fn(slices.Clone(*c.slot(&t)))
		if err != nil {
			return t, err
		}
		*c.slot(&t) = next
		return t, nil
	})
}

func (c Collection[T]) indexOf(items []T, id string) int {
	return slices.IndexFunc(items, func(it T) bool { return c.id(it) == id })
}

// Add appends item, assigning the next free id when it has none.
func (c Collection[T]) Add(s *Store, item T) error {
	return c.mutate(s, func(items []T) ([]T, error) {
		if c.nextID != nil {
			item = c.nextID(item, items)
		}
		items = append(items, item)
		if c.restamp != nil {
			c.restamp(items)
		}
		return items, nil
	})
}

// Update replaces the item with the given id by patch's result.
func (c Collection[T]) Update(s *Store, id string, patch func(T) T) error {
	return c.mutate(s, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
		}
		cur := items[i]
		if c.clone != nil {
			cur = c.clone(cur)
		}
		items[i] = patch(cur)
		return items, nil
	})
}

// Delete removes the item with the given id.
func (c Collection[T]) Delete(s *Store, id string) error {
	return c.mutate(s, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
		}
		items = slices.Delete(items, i, i+1)
		if c.restamp != nil {
			c.restamp(items)
		}
		return items, nil
	})
}

// Replace swaps in a whole new list.
func (c Collection[T]) Replace(s *Store, items []T) error {
	return c.mutate(s, func([]T) ([]T, error) {
		return slices.Clone(items), nil
	})
}

// Reorder moves the element at from to position to. The result is a
// permutation of the previous items.
func (c Collection[T]) Reorder(s *Store, from, to int) error {
	return c.mutate(s, func(items []T) ([]T, error) {
		if from < 0 || from >= len(items) || to < 0 || to >= len(items) {
			return nil, fmt.Errorf("%s: move %d to %d of %d: %w", c.name, from, to, len(items), ErrOutOfRange)
		}
		moved := items[from]
		items = slices.Delete(items, from, from+1)
		items = slices.Insert(items, to, moved)
		if c.restamp != nil {
			c.restamp(items)
		}
		return items, nil
	})
}

// Deduplicate drops every item whose key was already seen, keeping the
// first occurrence. A nil key uses the collection's default. It returns
// the number of items removed.
func (c Collection[T]) Deduplicate(s *Store, key func(T) string) (int, error) {
	if key == nil {
		key = c.dedup
	}
	removed := 0
	err := c.mutate(s, func(items []T) ([]T, error) {
		seen := make(map[string]struct{}, len(items))
		out := items[:0]
		for _, it := range items {
			k := key(it)
			if _, dup := seen[k]; dup {
				removed++
				continue
			}
			seen[k] = struct{}{}
			out = append(out, it)
		}
		if c.restamp != nil {
			c.restamp(out)
		}
		return out, nil
	})
	return removed, err
}

// ItemsJSON returns the current items encoded as a JSON array.
func (c Collection[T]) ItemsJSON(s *Store) ([]byte, error) {
	return json.MarshalIndent(c.Items(s), "", "  ")
}

// AddJSON decodes one item from raw and adds it.
func (c Collection[T]) AddJSON(s *Store, raw []byte) error {
	var item T
	if err := json.Unmarshal(raw, &item); err != nil {
		return fmt.Errorf("decode %s item: %w", c.name, err)
	}
	return c.Add(s, item)
}

// PatchJSON merges the fields present in raw into the item with the given
// id. A patch that fails to decode leaves the tree unchanged.
func (c Collection[T]) PatchJSON(s *Store, id string, raw []byte) error {
	if !json.Valid(raw) {
		return fmt.Errorf("decode %s patch: invalid JSON", c.name)
	}
	return c.mutate(s, func(items []T) ([]T, error) {
		i := c.indexOf(items, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", c.name, id, ErrNotFound)
		}
		// Decode onto a round-tripped copy so nested slices of the
		// current item stay untouched.
		base, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", c.name, err)
		}
		var next T
		if err := json.Unmarshal(base, &next); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", c.name, err)
		}
		if err := json.Unmarshal(raw, &next); err != nil {
			return nil, fmt.Errorf("decode %s patch: %w", c.name, err)
		}
		items[i] = next
		return items, nil
	})
}

// ReplaceJSON decodes a JSON array and replaces the collection with it.
func (c Collection[T]) ReplaceJSON(s *Store, raw []byte) error {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode %s items: %w", c.name, err)
	}
	return c.Replace(s, items)
}

// Handle is the name-addressed, type-erased view of a Collection.
type Handle interface {
	Name() string
	Len(s *Store) int
	IDs(s *Store) []string
	ItemsJSON(s *Store) ([]byte, error)
	AddJSON(s *Store, raw []byte) error
	PatchJSON(s *Store, id string, raw []byte) error
	ReplaceJSON(s *Store, raw []byte) error
	Delete(s *Store, id string) error
	Reorder(s *Store, from, to int) error
	DeduplicateDefault(s *Store) (int, error)
}

// DeduplicateDefault deduplicates by the collection's default key: image
// URL for the gallery, section for backgrounds, id otherwise.
func (c Collection[T]) DeduplicateDefault(s *Store) (int, error) {
	return c.Deduplicate(s, nil)
}

var handles = map[string]Handle{
	Gallery.name:     Gallery,
	Backgrounds.name: Backgrounds,
	Wines.name:       Wines,
	Rooms.name:       Rooms,
	Events.name:      Events,
}

var aliases = map[string]string{
	"gallery":     Gallery.name,
	"backgrounds": Backgrounds.name,
	"wines":       Wines.name,
}

// Lookup returns the collection with the given field name or short alias.
func Lookup(name string) (Handle, error) {
	if full, ok := aliases[name]; ok {
		name = full
	}
	h, ok := handles[name]
	if !ok {
		return nil, fmt.Errorf("%w %q (have %v)", ErrUnknownCollection, name, CollectionNames())
	}
	return h, nil
}

// CollectionNames lists the field names accepted by Lookup.
func CollectionNames() []string {
	names := make([]string, 0, len(handles))
	for n := range handles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
