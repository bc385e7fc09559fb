package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cea-hpc/rbh-fsevents/fsevent"
)

// Uploader is the collaborator sink.Backend delegates the actual
// metadata-index wire protocol to, kept deliberately opaque since spec.md
// §1 places the concrete protocol out of scope. Submit must treat events
// as read-only.
type Uploader interface {
	Submit(ctx context.Context, events []*fsevent.Event) error
}

// HTTPUploader is a small JSON-over-HTTP Uploader: it POSTs each batch as
// a JSON array of wire-shaped events to endpoint. It exists to keep
// sink.Backend exercised end-to-end in tests without wiring an actual
// external metadata index (SPEC_FULL.md §4.5), matching the teacher's
// rc package's convention of small standard-library HTTP clients rather
// than a generated SDK.
type HTTPUploader struct {
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPUploader builds an HTTPUploader posting to endpoint.
func NewHTTPUploader(endpoint *url.URL, client *http.Client) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{endpoint: endpoint, client: client}
}

// Submit encodes events as wire-shaped JSON and POSTs them to the
// uploader's endpoint.
func (u *HTTPUploader) Submit(ctx context.Context, events []*fsevent.Event) error {
	wires := make([]*fsevent.Wire, 0, len(events))
	for _, ev := range events {
		w, err := ev.ToWire()
		if err != nil {
			return fmt.Errorf("encoding event %s: %w", ev.Id.Hex(), err)
		}
		wires = append(wires, w)
	}

	body, err := json.Marshal(wires)
	if err != nil {
		return fmt.Errorf("marshaling batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("uploading batch to %s: %w", u.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("uploading batch to %s: unexpected status %s", u.endpoint, resp.Status)
	}
	return nil
}
