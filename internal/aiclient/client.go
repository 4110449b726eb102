package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
)

// ErrUpstream wraps every failure talking to the analysis service.
var ErrUpstream = errors.New("ai service call failed")

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

type Task string

const (
	TaskChat            Task = "chat"
	TaskMeal            Task = "meal"
	TaskJournal         Task = "journal"
	TaskRecommendations Task = "recommendations"
	TaskPosture         Task = "posture"
)

var taskPaths = map[Task]string{
	TaskChat:            "/coach-chat",
	TaskMeal:            "/meal-ocr",
	TaskJournal:         "/journal-nlp",
	TaskRecommendations: "/get-recommendations",
	TaskPosture:         "/pose-detection",
}

// Observer is told the outcome of every upstream call.
type Observer func(task Task, outcome string)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     internal.Logger
	observe    Observer
}

type Option func(*Client)

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observe = o }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func New(baseURL, apiKey string, timeout time.Duration, logger internal.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		observe:    func(Task, string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forward posts {userId, ...payload} to the task's endpoint and returns the
// response body once it passes the task's schema check. There is no retry.
func (c *Client) Forward(ctx context.Context, task Task, userID string, payload map[string]interface{}) (json.RawMessage, error) {
	path, ok := taskPaths[task]
	if !ok {
		return nil, fmt.Errorf("aiclient: unknown task %q", task)
	}

	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["userId"] = userID

	raw, err := c.post(ctx, path, body)
	if err != nil {
		c.observe(task, "error")
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	if err := checkSchema(task, raw); err != nil {
		c.observe(task, "invalid")
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, path, err)
	}
	c.observe(task, "ok")
	return raw, nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("ai service %s returned %d in %s", path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
