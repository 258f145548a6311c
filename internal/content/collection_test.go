package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(Options{Scheduler: NewManualScheduler()})
}

func TestReorder_IsPermutation(t *testing.T) {
	s := newTestStore(t)
	n := Gallery.Len(s)

	for from := 0; from < n; from++ {
		for to := 0; to < n; to++ {
			before := Gallery.IDs(s)
			require.NoError(t, Gallery.Reorder(s, from, to))
			after := Gallery.IDs(s)

			assert.ElementsMatch(t, before, after, "move %d to %d", from, to)
			assert.Equal(t, before[from], after[to], "move %d to %d", from, to)
		}
	}
}

func TestReorder_RestampsGalleryOrder(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, Gallery.Reorder(s, 3, 0))

	items := Gallery.Items(s)
	assert.Equal(t, 4, items[0].ID)
	for i, it := range items {
		assert.Equal(t, i, it.Order)
	}
}

func TestReorder_OutOfRange(t *testing.T) {
	s := newTestStore(t)
	before := s.Tree()

	for _, tc := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		err := Gallery.Reorder(s, tc[0], tc[1])
		assert.ErrorIs(t, err, ErrOutOfRange)
	}
	assert.Equal(t, before, s.Tree())
}

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	s := newTestStore(t)
	a := GalleryImage{ID: 1, URL: "/a.jpg", Title: "first A"}
	a2 := GalleryImage{ID: 2, URL: "/a.jpg", Title: "second A"}
	b := GalleryImage{ID: 3, URL: "/b.jpg"}
	require.NoError(t, Gallery.Replace(s, []GalleryImage{a, a2, b}))

	removed, err := Gallery.Deduplicate(s, func(g GalleryImage) string { return g.URL })
	require.NoError(t, err)

	assert.Equal(t, 1, removed)
	items := Gallery.Items(s)
	require.Len(t, items, 2)
	assert.Equal(t, "first A", items[0].Title)
	assert.Equal(t, "/b.jpg", items[1].URL)
	assert.Equal(t, 1, items[1].Order)
}

func TestAdd_AssignsNextID(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, Wines.Add(s, WineItem{Name: "House red"}))
	require.NoError(t, Wines.Add(s, WineItem{ID: 40, Name: "Explicit"}))

	items := Wines.Items(s)
	require.Len(t, items, 4)
	assert.Equal(t, 3, items[2].ID)
	assert.Equal(t, 40, items[3].ID)
}

func TestUpdateDelete_UnknownID(t *testing.T) {
	s := newTestStore(t)

	err := Rooms.Update(s, "99", func(r Room) Room { return r })
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, Events.Delete(s, "99"), ErrNotFound)
}

func TestLookup_JSONOperations(t *testing.T) {
	s := newTestStore(t)

	h, err := Lookup("gallery")
	require.NoError(t, err)
	assert.Equal(t, "galleryImages", h.Name())

	require.NoError(t, h.AddJSON(s, []byte(`{"url":"/added.jpg","title":"Added"}`)))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, h.IDs(s))

	require.NoError(t, h.PatchJSON(s, "5", []byte(`{"caption":"New caption"}`)))
	img := Gallery.Items(s)[4]
	assert.Equal(t, "Added", img.Title)
	assert.Equal(t, "New caption", img.Caption)

	require.NoError(t, h.ReplaceJSON(s, []byte(`[{"id":7,"url":"/only.jpg"}]`)))
	assert.Equal(t, []string{"7"}, h.IDs(s))

	raw, err := h.ItemsJSON(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":7,"url":"/only.jpg","order":0}]`, string(raw))

	assert.Error(t, h.AddJSON(s, []byte(`{`)))
	assert.Error(t, h.PatchJSON(s, "7", []byte(`nope`)))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("spa")
	assert.ErrorIs(t, err, ErrUnknownCollection)

	for _, name := range CollectionNames() {
		_, err := Lookup(name)
		assert.NoError(t, err, name)
	}
}

func TestBackgrounds_KeyedBySection(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, Backgrounds.Update(s, "events", func(b SectionBackground) SectionBackground {
		b.Overlay = 0.5
		return b
	}))

	assert.Equal(t, []string{"hero", "rooms", "dining", "events"}, Backgrounds.IDs(s))
	assert.Equal(t, 0.5, Backgrounds.Items(s)[3].Overlay)
}
