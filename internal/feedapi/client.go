package feedapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const maxImageBytes = 5 * 1024 * 1024

// Status is the /status payload.
type Status struct {
	PathsLoaded int `json:"paths_loaded"`
	LikedCount  int `json:"liked_count"`
}

// Recommendation is one element of a /recommend batch.
type Recommendation struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
}

type recommendResponse struct {
	Recommendations []Recommendation `json:"recommendations"`
}

type Action string

const (
	ActionLike Action = "like"
	ActionSkip Action = "skip"
)

type feedbackRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// Ack is whatever the service answered to a feedback post. The reference
// server replies with an empty 200, so Raw may be empty.
type Ack struct {
	Raw json.RawMessage
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/status", "status", &status); err != nil {
		return Status{}, err
	}
	return status, nil
}

func (c *Client) Recommend(ctx context.Context) ([]Recommendation, error) {
	var payload recommendResponse
	if err := c.getJSON(ctx, "/recommend", "recommend", &payload); err != nil {
		return nil, err
	}
	if payload.Recommendations == nil {
		return []Recommendation{}, nil
	}
	return payload.Recommendations, nil
}

func (c *Client) SendFeedback(ctx context.Context, index int, action Action) (Ack, error) {
	if action != ActionLike && action != ActionSkip {
		return Ack{}, fmt.Errorf("unsupported feedback action: %q", action)
	}
	payload, err := json.Marshal(feedbackRequest{Action: action, Index: index})
	if err != nil {
		return Ack{}, fmt.Errorf("encode feedback payload: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/feedback", bytes.NewReader(payload))
	if err != nil {
		return Ack{}, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.http.Do(req)
	if err != nil {
		return Ack{}, &TransportError{Op: "feedback", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "feedback"); err != nil {
		return Ack{}, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return Ack{}, &TransportError{Op: "feedback", StatusCode: resp.StatusCode, Err: fmt.Errorf("read ack: %w", err)}
	}
	body = bytes.TrimSpace(body)
	if len(body) > 0 && !json.Valid(body) {
		return Ack{}, &TransportError{Op: "feedback", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode ack: invalid json")}
	}
	return Ack{Raw: json.RawMessage(body)}, nil
}

func (c *Client) ImageURL(index int) string {
	return c.baseURL + "/image/" + strconv.Itoa(index)
}

func (c *Client) FetchImage(ctx context.Context, index int) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/image/"+strconv.Itoa(index), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: "image", Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "image"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, &TransportError{Op: "image", StatusCode: resp.StatusCode, Err: fmt.Errorf("read image: %w", err)}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path, op string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, op); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode %s response: %w", op, err)}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &TransportError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
