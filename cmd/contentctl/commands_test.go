package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillwater/lodge/internal/content"
)

func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func loadTree(t *testing.T, dir string) content.Tree {
	t.Helper()
	b, err := content.NewFileBackend(dir)
	require.NoError(t, err)
	return content.NewStore(content.Options{Backend: b}).Tree()
}

func TestEditCommandsPersist(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, dir, "add", "wines", `{"name":"House red"}`)
	require.NoError(t, err)
	_, _, err = run(t, dir, "update", "rooms", "2", `{"price":"$680"}`)
	require.NoError(t, err)
	_, _, err = run(t, dir, "reorder", "gallery", "3", "0")
	require.NoError(t, err)
	_, _, err = run(t, dir, "delete", "events", "2")
	require.NoError(t, err)
	_, _, err = run(t, dir, "set-background", "hero", "/hero-winter.jpg")
	require.NoError(t, err)
	_, _, err = run(t, dir, "site", `{"heroSubtitle":"Open all winter"}`)
	require.NoError(t, err)

	tree := loadTree(t, dir)
	assert.Equal(t, "House red", tree.WineCollection[2].Name)
	assert.Equal(t, "$680", tree.Rooms[1].Price)
	assert.Equal(t, 4, tree.GalleryImages[0].ID)
	assert.Equal(t, 0, tree.GalleryImages[0].Order)
	assert.Len(t, tree.Events, 1)
	assert.Equal(t, "/hero-winter.jpg", tree.SectionBackgrounds[0].ImageURL)
	assert.Equal(t, "Open all winter", tree.SiteContent.HeroSubtitle)
	assert.Equal(t, "Stillwater Lodge", tree.SiteContent.HeroTitle)
}

func TestReplaceAndDedupe(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, dir, "replace", "galleryImages",
		`[{"id":1,"url":"/a.jpg"},{"id":2,"url":"/a.jpg"},{"id":3,"url":"/b.jpg"}]`)
	require.NoError(t, err)

	out, _, err := run(t, dir, "dedupe", "gallery")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 duplicate(s)")

	out, _, err = run(t, dir, "show", "gallery")
	require.NoError(t, err)
	var imgs []content.GalleryImage
	require.NoError(t, json.Unmarshal([]byte(out), &imgs))
	require.Len(t, imgs, 2)
	assert.Equal(t, []int{1, 3}, []int{imgs[0].ID, imgs[1].ID})
}

func TestErrors(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, dir, "show", "spa")
	assert.ErrorIs(t, err, content.ErrUnknownCollection)

	_, _, err = run(t, dir, "delete", "rooms", "42")
	assert.ErrorIs(t, err, content.ErrNotFound)

	_, _, err = run(t, dir, "reorder", "gallery", "0", "9")
	assert.ErrorIs(t, err, content.ErrOutOfRange)

	_, _, err = run(t, dir, "set-background", "lobby", "/x.jpg")
	assert.Error(t, err)
}

func TestShowWholeTree(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "show")
	require.NoError(t, err)

	var tree content.Tree
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, content.DefaultTree(), tree)
}
