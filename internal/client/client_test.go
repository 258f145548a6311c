package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillwater/lodge/internal/media"
	"github.com/stillwater/lodge/internal/upload"
)

type fakeAPI struct {
	mu         sync.Mutex
	uploaded   map[string]string
	registered []string
	failUpload bool
	failGrant  bool
	srv        *httptest.Server
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{uploaded: make(map[string]string)}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /upload/signed-url", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
			return
		}
		var req upload.Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if f.failGrant || req.FileName == "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"fileName is required","field":"fileName"}`))
			return
		}
		key := req.Folder + "/1-" + req.FileName
		_ = json.NewEncoder(w).Encode(upload.Grant{
			WriteURL:  f.srv.URL + "/bucket/" + key + "?X-Amz-Signature=abc",
			PublicURL: "https://cdn.test/" + key,
			ObjectKey: key,
		})
	})

	mux.HandleFunc("PUT /bucket/", func(w http.ResponseWriter, r *http.Request) {
		if f.failUpload {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("SignatureDoesNotMatch"))
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.uploaded[strings.TrimPrefix(r.URL.Path, "/bucket/")] = r.Header.Get("Content-Type") + ":" + string(body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /gallery", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.mu.Lock()
		f.registered = append(f.registered, body["url"])
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(media.Record{
			ID:         "rec-1",
			URL:        body["url"],
			Folder:     body["folder"],
			UploadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		})
	})

	mux.HandleFunc("GET /gallery", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]media.Record{{ID: "rec-1", Folder: r.URL.Query().Get("category")}})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func newClient(f *fakeAPI) *Client {
	return New(f.srv.URL, "secret", 5*time.Second, slog.Default())
}

func TestPublish_Success(t *testing.T) {
	f := newFakeAPI(t)
	c := newClient(f)

	pub, err := c.Publish(context.Background(), File{
		Name:   "suite.jpg",
		Folder: "rooms",
		Body:   strings.NewReader("jpeg-bytes"),
		Size:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, "rooms/1-suite.jpg", pub.Grant.ObjectKey)
	assert.Equal(t, "rec-1", pub.Record.ID)
	assert.Equal(t, "image/jpeg:jpeg-bytes", f.uploaded["rooms/1-suite.jpg"])
	assert.Equal(t, []string{"https://cdn.test/rooms/1-suite.jpg"}, f.registered)
}

func TestPublish_UploadFailureSkipsRegister(t *testing.T) {
	f := newFakeAPI(t)
	f.failUpload = true
	c := newClient(f)

	_, err := c.Publish(context.Background(), File{Name: "a.png", ContentType: "image/png", Body: strings.NewReader("x")})

	require.Error(t, err)
	assert.True(t, IsStep(err, StepUpload))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Empty(t, f.registered)
}

func TestPublish_GrantFailure(t *testing.T) {
	f := newFakeAPI(t)
	f.failGrant = true
	c := newClient(f)

	_, err := c.Publish(context.Background(), File{Name: "a.jpg", Body: strings.NewReader("x")})

	assert.True(t, IsStep(err, StepIssueURL))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "fileName", apiErr.Field)
	assert.Empty(t, f.uploaded)
}

func TestRequestGrant_Unauthorized(t *testing.T) {
	f := newFakeAPI(t)
	c := New(f.srv.URL, "wrong", time.Second, slog.Default())

	_, err := c.RequestGrant(context.Background(), upload.Request{FileName: "a.jpg"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid api key", apiErr.Message)
}

func TestListMedia(t *testing.T) {
	f := newFakeAPI(t)
	c := newClient(f)

	recs, err := c.ListMedia(context.Background(), "dining room")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "dining room", recs[0].Folder)
}
