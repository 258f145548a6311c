package media

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stillwater/lodge/internal/apperr"
	"github.com/stillwater/lodge/internal/upload"
)

var (
	registeredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lodge_media_registered_total",
		Help: "Media records written to the registry.",
	})
	listCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lodge_media_list_cache_hits_total",
		Help: "Media list requests answered from cache.",
	})
	listCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lodge_media_list_cache_misses_total",
		Help: "Media list requests that reached the repository.",
	})
)

// allFolders is the cache key for an unfiltered listing.
const allFolders = "\x00all"

// Service registers and lists media records.
//
// The list cache is local to the process: another instance sharing the
// registry serves its own cached lists until they expire.
type Service struct {
	repo  Repository
	cache *expirable.LRU[string, []Record]
	now   func() time.Time
	newID func() string

	// cacheMu orders cache fills against invalidation. gen counts
	// invalidations per key; a fill is dropped if its key moved on while
	// the repository was being read.
	cacheMu sync.Mutex
	gen     map[string]uint64
}

// NewService creates a media Service. cacheSize <= 0 disables the list cache.
func NewService(repo Repository, cacheSize int, cacheTTL time.Duration) *Service {
	s := &Service{
		repo:  repo,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	if cacheSize > 0 {
		s.cache = expirable.NewLRU[string, []Record](cacheSize, nil, cacheTTL)
		s.gen = make(map[string]uint64)
	}
	return s
}

// Register records url under folder. The url is not checked against issued grants.
// Calling twice with the same url creates two records.
func (s *Service) Register(ctx context.Context, url, folder string) (*Record, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.Validation("url", "")
	}

	rec := Record{
		ID:         s.newID(),
		URL:        url,
		Folder:     NormalizeFolder(folder),
		UploadedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		return nil, apperr.Internal("register media", err)
	}

	s.invalidate(rec.Folder, allFolders)
	registeredTotal.Inc()
	return &rec, nil
}

// List returns every record in folder, or all records when folder is empty.
func (s *Service) List(ctx context.Context, folder string) ([]Record, error) {
	key := allFolders
	if strings.TrimSpace(folder) != "" {
		folder = NormalizeFolder(folder)
		key = folder
	} else {
		folder = ""
	}

	var gen uint64
	if s.cache != nil {
		if recs, ok := s.cache.Get(key); ok {
			listCacheHitsTotal.Inc()
			return slices.Clone(recs), nil
		}
		listCacheMissesTotal.Inc()
		gen = s.generation(key)
	}

	recs, err := s.repo.List(ctx, folder)
	if err != nil {
		return nil, apperr.Internal("list media", err)
	}
	if recs == nil {
		recs = []Record{}
	}

	s.fill(key, gen, recs)
	return recs, nil
}

func (s *Service) generation(key string) uint64 {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	return s.gen[key]
}

// fill caches recs under key unless key was invalidated after gen was read.
func (s *Service) fill(key string, gen uint64, recs []Record) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.gen[key] != gen {
		return
	}
	s.cache.Add(key, slices.Clone(recs))
}

// invalidate drops keys from the cache and makes in-flight fills for them stale.
func (s *Service) invalidate(keys ...string) {
	if s.cache == nil {
		return
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	for _, k := range keys {
		s.gen[k]++
		s.cache.Remove(k)
	}
}

// NormalizeFolder maps a registry folder onto the object key folder form.
func NormalizeFolder(folder string) string {
	return upload.SanitizeFolder(folder)
}
