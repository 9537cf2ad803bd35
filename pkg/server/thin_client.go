package server

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"net/http"
	"strings"
)

const (
	// ThinClientPath is where the browser client script is served.
	ThinClientPath = "/_toast/client.js"

	// StylesheetPath serves the container styles for host pages that embed
	// the stack instead of using GET /.
	StylesheetPath = "/_toast/toast.css"
)

var (
	//go:embed client/toast.js
	thinClientJS []byte

	//go:embed client/toast.css
	stylesheet []byte
)

// asset is an embedded file served with a content-hash ETag. The URLs are
// not versioned, so browsers revalidate on every load.
type asset struct {
	body        []byte
	contentType string
	etag        string
}

func newAsset(body []byte, contentType string) asset {
	sum := sha256.Sum256(body)
	return asset{
		body:        body,
		contentType: contentType,
		etag:        `"` + hex.EncodeToString(sum[:]) + `"`,
	}
}

var (
	thinClientAsset = newAsset(thinClientJS, "application/javascript; charset=utf-8")
	stylesheetAsset = newAsset(stylesheet, "text/css; charset=utf-8")

	thinClientETag = thinClientAsset.etag
)

func (a asset) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if len(a.body) == 0 {
		http.Error(w, "Asset not available", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("ETag", a.etag)
	h.Set("Content-Type", a.contentType)
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "public, max-age=0, must-revalidate")

	switch {
	case etagMatches(r.Header.Get("If-None-Match"), a.etag):
		w.WriteHeader(http.StatusNotModified)
	case r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.body)
	}
}

// etagMatches reports whether an If-None-Match list names etag. Weak
// validators compare by their opaque tag.
func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, part := range strings.Split(header, ",") {
		candidate := strings.TrimPrefix(strings.TrimSpace(part), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
