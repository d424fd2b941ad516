package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// BlobCollection is the PocketBase collection holding persisted blobs
const BlobCollection = "kv_blobs"

// PocketBaseRESTStore implements BlobStore on a PocketBase collection with
// a unique "key" text field and a "value" text field
type PocketBaseRESTStore struct {
	baseURL    string
	authToken  string
	httpClient *http.Client

	mu        sync.Mutex
	recordIDs map[string]string
}

// NewPocketBaseRESTStore creates the store
func NewPocketBaseRESTStore(baseURL, authToken string) *PocketBaseRESTStore {
	return &PocketBaseRESTStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		recordIDs:  make(map[string]string),
	}
}

func (r *PocketBaseRESTStore) addAuthHeader(req *http.Request) {
	if r.authToken != "" {
		req.Header.Set("Authorization", r.authToken)
	}
}

type blobRecord struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (r *PocketBaseRESTStore) find(ctx context.Context, key string) (*blobRecord, error) {
	filter := fmt.Sprintf("key='%s'", strings.ReplaceAll(key, "'", "\\'"))
	apiURL := fmt.Sprintf("%s/api/collections/%s/records?filter=%s&perPage=1",
		r.baseURL, BlobCollection, url.QueryEscape(filter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to look up blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to look up blob %s: %s - %s", key, resp.Status, string(body))
	}

	var result struct {
		Items []blobRecord `json:"items"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode blob %s: %w", key, err)
	}

	if len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	rec := result.Items[0]
	r.mu.Lock()
	r.recordIDs[key] = rec.ID
	r.mu.Unlock()
	return &rec, nil
}

func (r *PocketBaseRESTStore) Get(ctx context.Context, key string) ([]byte, error) {
	rec, err := r.find(ctx, key)
	if err != nil {
		return nil, err
	}
	log.Debugf("🔍 Loaded blob %s (%d bytes) from PocketBase", key, len(rec.Value))
	return []byte(rec.Value), nil
}

func (r *PocketBaseRESTStore) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	id := r.recordIDs[key]
	r.mu.Unlock()

	if id == "" {
		rec, err := r.find(ctx, key)
		switch {
		case err == nil:
			id = rec.ID
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}

	jsonData, err := json.Marshal(map[string]interface{}{
		"key":   key,
		"value": string(value),
	})
	if err != nil {
		return err
	}

	method := http.MethodPost
	apiURL := fmt.Sprintf("%s/api/collections/%s/records", r.baseURL, BlobCollection)
	if id != "" {
		method = http.MethodPatch
		apiURL = fmt.Sprintf("%s/%s", apiURL, id)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	r.addAuthHeader(req)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save blob %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusNotFound && id != "" {
			// record deleted behind our back; forget it so the next write recreates it
			r.mu.Lock()
			delete(r.recordIDs, key)
			r.mu.Unlock()
		}
		return fmt.Errorf("failed to save blob %s: %s - %s", key, resp.Status, string(body))
	}

	if id == "" {
		var created blobRecord
		if err := json.NewDecoder(resp.Body).Decode(&created); err == nil && created.ID != "" {
			r.mu.Lock()
			r.recordIDs[key] = created.ID
			r.mu.Unlock()
		}
	}

	log.Debugf("💾 Saved blob %s (%d bytes) to PocketBase", key, len(value))
	return nil
}
