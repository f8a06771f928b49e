package cache

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

// Page is a gzip-compressed response ready to be replayed
type Page struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Disposition string `json:"disposition,omitempty"`
	ETag        string `json:"etag"`
	Body        []byte `json:"body"`
}

// NewPage compresses body and derives its ETag from the compressed bytes
func NewPage(status int, header http.Header, body []byte) (*Page, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("failed to compress page: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress page: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return &Page{
		Status:      status,
		ContentType: header.Get("Content-Type"),
		Disposition: header.Get("Content-Disposition"),
		ETag:        `"` + hex.EncodeToString(sum[:]) + `"`,
		Body:        buf.Bytes(),
	}, nil
}

func (p *Page) encode() ([]byte, error) {
	return json.Marshal(p)
}

func decodePage(data []byte) (*Page, error) {
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("corrupt cached page: %w", err)
	}
	return &p, nil
}

// Write replays the page, or answers 304 when the client already has it
func (p *Page) Write(w http.ResponseWriter, r *http.Request) {
	h := w.Header()
	h.Set("ETag", p.ETag)
	h.Add("Vary", "Accept-Encoding")
	if etagMatches(r.Header.Get("If-None-Match"), p.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if p.ContentType != "" {
		h.Set("Content-Type", p.ContentType)
	}
	if p.Disposition != "" {
		h.Set("Content-Disposition", p.Disposition)
	}
	h.Set("Content-Encoding", "gzip")
	h.Set("Content-Length", fmt.Sprint(len(p.Body)))
	w.WriteHeader(p.Status)
	if r.Method != http.MethodHead {
		w.Write(p.Body)
	}
}
