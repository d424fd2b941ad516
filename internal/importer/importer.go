// Package importer fetches nickname dictionaries published as JSON over HTTP
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a whole import request
const DefaultTimeout = 10 * time.Second

// maxBodySize caps the downloaded document
const maxBodySize = 4 << 20

// Error is an import failure with a message meant for the user
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result holds the valid entries of an imported document
type Result struct {
	Nicknames map[string]string
	Count     int
}

// Importer downloads a JSON array of {"rfid_tag", "nickname"} objects
type Importer struct {
	httpClient *http.Client
}

// New creates an importer whose requests time out after timeout
func New(timeout time.Duration) *Importer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Importer{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and validates the document at rawURL. Elements without a
// non-blank string rfid_tag and nickname are skipped; a document with no
// valid element is an error. Fetch never retries.
func (i *Importer) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, &Error{Message: "Invalid URL format. Must start with http:// or https://"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Message: "Invalid URL format. Must start with http:// or https://", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	log.Infof("📥 Importing nicknames from %s", rawURL)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("Error: %v", err), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Message: fmt.Sprintf("Failed to fetch: HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("Error: %v", err), Err: err}
	}

	result, err := Parse(body)
	if err != nil {
		return nil, err
	}

	log.Infof("✅ Import fetched %d nickname(s) from %s", result.Count, rawURL)
	return result, nil
}

// Parse validates a nickname document
func Parse(body []byte) (*Result, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(body, &elements); err != nil {
		return nil, &Error{Message: fmt.Sprintf("Error: %v", err), Err: err}
	}

	result := &Result{Nicknames: make(map[string]string)}
	for _, raw := range elements {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}

		tag := stringField(obj, "rfid_tag")
		nickname := stringField(obj, "nickname")
		if tag == "" || nickname == "" {
			continue
		}

		result.Nicknames[tag] = nickname
		result.Count++
	}

	if result.Count == 0 {
		return nil, &Error{Message: "No valid entries (rfid_tag, nickname) found in JSON."}
	}
	return result, nil
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}
