package content

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultCeiling is the largest serialized tree that will be persisted.
	DefaultCeiling = 4_718_592 // 4.5 MiB
	// DefaultDebounce collapses bursts of edits into one write.
	DefaultDebounce = 150 * time.Millisecond
)

// Warning reports a persistence attempt that did not reach storage. It is
// delivered out of band; the in-memory tree stays authoritative.
type Warning struct {
	Size    int
	Limit   int
	Message string
	Err     error
	At      time.Time
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Backend   Backend
	Key       string
	Scheduler Scheduler
	Debounce  time.Duration
	Ceiling   int
	Now       func() time.Time
	OnWarning func(Warning)
	Logger    *slog.Logger
}

// Store holds the current Tree and mirrors it to a Backend.
type Store struct {
	mu        sync.Mutex
	tree      Tree
	cancel    func()
	gen       uint64
	listeners map[int]func(Tree)
	nextID    int

	persistMu sync.Mutex
	hydration Validation
	opts      Options
}

// NewStore hydrates a store from opts.Backend, falling back per field to
// DefaultTree.
func NewStore(opts Options) *Store {
	if opts.Backend == nil {
		opts.Backend = NewMemoryBackend()
	}
	if opts.Key == "" {
		opts.Key = StorageKey
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Ceiling <= 0 {
		opts.Ceiling = DefaultCeiling
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	v := Hydrate(opts.Backend, opts.Key)
	for _, issue := range v.Issues {
		opts.Logger.Debug("content: using default",
			slog.String("field", issue.Field),
			slog.String("reason", issue.Reason),
		)
	}

	return &Store{
		tree:      v.Tree,
		hydration: v,
		opts:      opts,
		listeners: make(map[int]func(Tree)),
	}
}

// Tree returns the current tree. Callers must treat it as read-only.
func (s *Store) Tree() Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}

// Hydration returns the validation result from construction.
func (s *Store) Hydration() Validation {
	return s.hydration
}

// Subscribe registers fn to receive the new tree after every mutation.
func (s *Store) Subscribe(fn func(Tree)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// apply replaces the tree with fn's result and schedules persistence.
// The tree is left untouched when fn fails.
func (s *Store) apply(fn func(Tree) (Tree, error)) error {
	s.mu.Lock()
	next, err := fn(s.tree)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.tree = next
	s.scheduleLocked()

	listeners := make([]func(Tree), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next)
	}
	return nil
}

func (s *Store) scheduleLocked() {
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	gen := s.gen
	s.cancel = s.opts.Scheduler.Schedule(func() {
		s.mu.Lock()
		if s.gen == gen {
			s.cancel = nil
		}
		s.mu.Unlock()
		s.persistCurrent()
	}, s.opts.Debounce)
}

// Flush runs a pending persistence immediately. It returns false when
// nothing was pending or the write did not happen.
func (s *Store) Flush() bool {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return false
	}
	s.cancel()
	s.cancel = nil
	s.gen++
	s.mu.Unlock()

	return s.persistCurrent()
}

func (s *Store) persistCurrent() bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persistLocked(s.Tree())
}

// Persist serializes t and writes it to the backend. Oversized trees are
// not written; both that and a failed write emit exactly one Warning.
// Persist never panics or returns an error; it reports whether t was written.
func (s *Store) Persist(t Tree) bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persistLocked(t)
}

func (s *Store) persistLocked(t Tree) bool {
	data, err := json.Marshal(t)
	if err != nil {
		s.warn(Warning{Message: "Could not prepare content for saving.", Err: err})
		return false
	}

	if len(data) > s.opts.Ceiling {
		s.warn(Warning{
			Size:  len(data),
			Limit: s.opts.Ceiling,
			Message: fmt.Sprintf(
				"Content is %s, over the %s local storage limit. Use smaller images or externally hosted image URLs.",
				humanSize(len(data)), humanSize(s.opts.Ceiling),
			),
		})
		return false
	}

	if err := s.opts.Backend.Save(s.opts.Key, data); err != nil {
		s.warn(Warning{
			Size:    len(data),
			Limit:   s.opts.Ceiling,
			Message: "Could not save content locally. Your changes are kept for this session.",
			Err:     err,
		})
		return false
	}

	s.opts.Logger.Debug("content: persisted", slog.Int("bytes", len(data)))
	return true
}

func (s *Store) warn(w Warning) {
	w.At = s.opts.Now()
	attrs := []any{slog.Int("size", w.Size), slog.Int("limit", w.Limit)}
	if w.Err != nil {
		attrs = append(attrs, slog.String("error", w.Err.Error()))
	}
	s.opts.Logger.Warn("content: "+w.Message, attrs...)
	if s.opts.OnWarning != nil {
		s.opts.OnWarning(w)
	}
}

// SetBackground sets the image of section, adding the record if absent.
func (s *Store) SetBackground(section Section, imageURL string) error {
	if !validSection(section) {
		return fmt.Errorf("unknown section %q", section)
	}
	return s.apply(func(t Tree) (Tree, error) {
		bgs := make([]SectionBackground, 0, len(t.SectionBackgrounds)+1)
		found := false
		for _, bg := range t.SectionBackgrounds {
			if bg.Section == section {
				bg.ImageURL = imageURL
				found = true
			}
			bgs = append(bgs, bg)
		}
		if !found {
			bgs = append(bgs, SectionBackground{Section: section, ImageURL: imageURL})
		}
		t.SectionBackgrounds = bgs
		return t, nil
	})
}

// UpdateSiteContent replaces the site copy with patch's result.
func (s *Store) UpdateSiteContent(patch func(SiteContent) SiteContent) {
	_ = s.apply(func(t Tree) (Tree, error) {
		t.SiteContent = patch(t.SiteContent)
		return t, nil
	})
}

// ReplaceTree swaps in a whole tree, e.g. when importing a backup.
func (s *Store) ReplaceTree(t Tree) {
	_ = s.apply(func(Tree) (Tree, error) { return t, nil })
}

func validSection(sec Section) bool {
	for _, s := range Sections {
		if s == sec {
			return true
		}
	}
	return false
}

func humanSize(n int) string {
	const mib = 1 << 20
	if n >= mib {
		return fmt.Sprintf("%.1f MB", float64(n)/mib)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
