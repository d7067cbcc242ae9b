package state

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
	"time"

	"github.com/rs/zerolog/log"
	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

// StoreOption customizes UpstashRedisStore.
type StoreOption func(*UpstashRedisStore)

func WithListKey(key string) StoreOption {
	return func(s *UpstashRedisStore) {
		trimmed := strings.TrimSpace(key)
		if trimmed != "" {
			s.listKey = trimmed
		}
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(s *UpstashRedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// UpstashRedisStore appends leads to a Redis list through the Upstash REST API.
// RPUSH is atomic on the server, so concurrent sessions never lose a record.
type UpstashRedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	listKey    string
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

type UpstashRedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

func NewUpstashRedisStore(cfg UpstashRedisConfig, opts ...StoreOption) (*UpstashRedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: upstash redis url is required", ErrStoreConfig)
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid redis rest url: %v", ErrStoreConfig, err)
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: upstash redis token is required", ErrStoreConfig)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	store := &UpstashRedisStore{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		listKey: defaultListKey,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store, nil
}

func (s *UpstashRedisStore) Backend() string { return BackendUpstash }

func (s *UpstashRedisStore) Close() error { return nil }

func (s *UpstashRedisStore) Append(ctx context.Context, rec leadx.Record) error {
	payload, err := json.Marshal(stamp(rec))
	if err != nil {
		return fmt.Errorf("marshal lead record: %w", err)
	}

	if _, err := s.exec(ctx, []any{"RPUSH", s.listKey, string(payload)}); err != nil {
		return err
	}
	return nil
}

func (s *UpstashRedisStore) List(ctx context.Context) ([]leadx.Record, error) {
	resp, err := s.exec(ctx, []any{"LRANGE", s.listKey, 0, -1})
	if err != nil {
		return nil, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, nil
	}

	var encoded []string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, fmt.Errorf("decode lead list: %w", err)
	}
	return decodeRecords(ctx, BackendUpstash, encoded), nil
}

func (s *UpstashRedisStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}
	if len(command) == 0 {
		return nil, errors.New("empty redis command")
	}

	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

// decodeRecords skips list entries that are not valid records instead of failing the read.
func decodeRecords(ctx context.Context, backend string, encoded []string) []leadx.Record {
	out := make([]leadx.Record, 0, len(encoded))
	for i, item := range encoded {
		var rec leadx.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("backend", backend).Int("index", i).Msg("skipping malformed lead entry")
			continue
		}
		out = append(out, rec)
	}
	return out
}
