package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type DiscordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type DiscordEmbed struct {
	Title     string              `json:"title"`
	Color     int                 `json:"color"`
	Fields    []DiscordEmbedField `json:"fields"`
	Timestamp string              `json:"timestamp,omitempty"`
}

type DiscordWebhookPayload struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

func levelColor(level zapcore.Level) int {
	switch level {
	case zapcore.InfoLevel:
		return 3066993 // Green
	case zapcore.WarnLevel:
		return 15105570 // Orange
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// WebhookSink forwards log entries to a Discord webhook as embeds. Entries are
// queued and posted by a single background goroutine so logging never blocks
// on the network.
type WebhookSink struct {
	url    string
	client *http.Client
	queue  chan zapcore.Entry
	wg     sync.WaitGroup
	once   sync.Once
}

func NewWebhookSink(url string, client *http.Client) *WebhookSink {
	if client == nil {
		client = GlobalHTTPClient
	}
	s := &WebhookSink{
		url:    url,
		client: client,
		queue:  make(chan zapcore.Entry, 64),
	}
	s.wg.Add(1)
	go s.loop()
	return s
}

func (s *WebhookSink) loop() {
	defer s.wg.Done()
	for entry := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = s.post(ctx, entry)
		cancel()
	}
}

// Hook is a zap hook that enqueues warn and error entries. Entries are
// dropped when the queue is full.
func (s *WebhookSink) Hook(entry zapcore.Entry) error {
	if entry.Level < zapcore.WarnLevel {
		return nil
	}
	select {
	case s.queue <- entry:
	default:
	}
	return nil
}

// Close stops accepting entries and waits for queued ones to be posted.
func (s *WebhookSink) Close() {
	s.once.Do(func() {
		close(s.queue)
	})
	s.wg.Wait()
}

func (s *WebhookSink) post(ctx context.Context, entry zapcore.Entry) error {
	module := entry.LoggerName
	if module == "" {
		module = "bot"
	}
	fields := []DiscordEmbedField{
		{Name: "Module", Value: module, Inline: true},
		{Name: "Message", Value: truncate(entry.Message, 1024)},
	}
	if entry.Caller.Defined {
		fields = append(fields, DiscordEmbedField{Name: "Caller", Value: entry.Caller.TrimmedPath(), Inline: true})
	}
	payload := DiscordWebhookPayload{
		Embeds: []DiscordEmbed{{
			Title:     strings.ToUpper(entry.Level.String()) + " Log",
			Color:     levelColor(entry.Level),
			Fields:    fields,
			Timestamp: entry.Time.UTC().Format(time.RFC3339),
		}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("failed to send log to discord, status: %s, body: %s", resp.Status, string(body))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

// NewLogger builds the process logger. An empty webhookURL disables the
// Discord sink; the returned func flushes the logger and stops the sink.
func NewLogger(level, webhookURL string) (*zap.Logger, func(), error) {
	atomicLevel := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if level != "" {
		if err := atomicLevel.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = atomicLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var opts []zap.Option
	var sink *WebhookSink
	if webhookURL != "" {
		sink = NewWebhookSink(webhookURL, GlobalHTTPClient)
		opts = append(opts, zap.Hooks(sink.Hook))
	}

	logger, err := cfg.Build(opts...)
	if err != nil {
		if sink != nil {
			sink.Close()
		}
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	closer := func() {
		_ = logger.Sync()
		if sink != nil {
			sink.Close()
		}
	}
	return logger, closer, nil
}
