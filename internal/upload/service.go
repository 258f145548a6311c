package upload

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stillwater/lodge/internal/apperr"
	"github.com/stillwater/lodge/internal/storage"
)

var grantsIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lodge_upload_grants_total",
		Help: "Upload grant requests by outcome.",
	},
	[]string{"outcome"},
)

// Request is a client's ask for a write grant.
type Request struct {
	FileName    string `json:"fileName"    example:"suite.jpg"`
	ContentType string `json:"contentType" example:"image/jpeg"`
	Folder      string `json:"folder"      example:"rooms"`
}

// Grant is a single-use, time-limited permission to write one object.
type Grant struct {
	WriteURL  string `json:"writeUrl"`
	PublicURL string `json:"publicUrl"`
	ObjectKey string `json:"objectKey" example:"rooms/1700000000000-suite.jpg"`
}

// Service issues upload grants.
type Service struct {
	signer storage.Signer
	expiry time.Duration
	now    func() time.Time
}

// NewService creates a new upload Service. A nil now uses time.Now.
func NewService(signer storage.Signer, expiry time.Duration, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{signer: signer, expiry: expiry, now: now}
}

// RequestGrant validates req, derives an object key and signs a PUT URL.
// Two requests for the same name in the same folder differ by their
// millisecond timestamp; sub-millisecond collisions are not retried.
func (s *Service) RequestGrant(ctx context.Context, req Request) (*Grant, error) {
	if strings.TrimSpace(req.FileName) == "" {
		grantsIssuedTotal.WithLabelValues("invalid").Inc()
		return nil, apperr.Validation("fileName", "")
	}
	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" {
		contentType = DefaultContentType
	}

	key := ObjectKey(req.Folder, req.FileName, s.now())

	writeURL, err := s.signer.PresignPut(ctx, key, contentType, s.expiry)
	if err != nil {
		grantsIssuedTotal.WithLabelValues("error").Inc()
		return nil, apperr.Internal("issue signed url", err)
	}

	grantsIssuedTotal.WithLabelValues("issued").Inc()
	return &Grant{
		WriteURL:  writeURL,
		PublicURL: s.signer.PublicURL(key),
		ObjectKey: key,
	}, nil
}
