package commands

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"rpg-bot/model"
	"rpg-bot/utils"
)

// maxBookSize bounds the response body read from the commands API.
const maxBookSize = 8 << 20

// HTTPStore fetches the command book from an HTTP endpoint on every call,
// so edits made in the dashboard apply to the next invocation.
type HTTPStore struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewHTTPStore uses utils.GlobalHTTPClient when client is nil.
func NewHTTPStore(url string, client *http.Client, log *zap.Logger) *HTTPStore {
	if client == nil {
		client = utils.GlobalHTTPClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &HTTPStore{url: url, client: client, log: log.Named("http_store")}
}

func (s *HTTPStore) Commands(ctx context.Context) (model.CommandBook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build commands request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch commands: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch commands: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBookSize))
	if err != nil {
		return nil, fmt.Errorf("read commands response: %w", err)
	}

	format := "json"
	if strings.Contains(resp.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}
	book, err := model.DecodeCommandBook(data, format)
	if err != nil {
		return nil, err
	}
	s.log.Debug("command book fetched", zap.Int("commands", len(book)))
	return book, nil
}

func (s *HTTPStore) Close() error { return nil }
