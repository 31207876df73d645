package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client wraps HTTP calls to the playhead daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new playhead API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	var rdr io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal error: %w", err)
		}
		rdr = bytes.NewReader(jsonBody)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", rdr)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return apiError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return apiError(resp)
	}

	return nil
}

// apiError surfaces the daemon's error envelope when it sent one.
func apiError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var envelope struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != "" {
		return fmt.Errorf("server error %d (%s): %s", resp.StatusCode, envelope.Code, envelope.Error)
	}
	return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
}

// API response types (mirror server types)

type ResumeItem struct {
	UnitID       string  `json:"unit_id"`
	GroupID      string  `json:"group_id"`
	GroupTitle   string  `json:"group_title"`
	UnitTitle    string  `json:"unit_title"`
	UnitSequence int     `json:"unit_sequence"`
	PositionMS   int64   `json:"position_ms"`
	DurationMS   int64   `json:"duration_ms"`
	Fraction     float64 `json:"fraction"`
	UpdatedAtMS  int64   `json:"updated_at_ms"`
}

type ListResumeResponse struct {
	Items []ResumeItem `json:"items"`
	Limit int          `json:"limit"`
}

type SessionResponse struct {
	State      string   `json:"state"`
	UnitID     string   `json:"unit_id"`
	GroupID    string   `json:"group_id"`
	UnitTitle  string   `json:"unit_title"`
	SourceURL  string   `json:"source_url"`
	PositionMS int64    `json:"position_ms"`
	DurationMS int64    `json:"duration_ms"`
	Sources    []string `json:"sources"`
}

type StatusResponse struct {
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	SessionState  string `json:"session_state"`
}

func (c *Client) Resume(limit int) (*ListResumeResponse, error) {
	var out ListResumeResponse
	if err := c.get(fmt.Sprintf("/api/v1/resume?limit=%d", limit), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GroupResume(groupID string) (*ResumeItem, error) {
	var out ResumeItem
	if err := c.get("/api/v1/groups/"+url.PathEscape(groupID)+"/resume", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RemoveResume(unitID string) error {
	return c.delete("/api/v1/resume/" + url.PathEscape(unitID))
}

func (c *Client) Session() (*SessionResponse, error) {
	var out SessionResponse
	if err := c.get("/api/v1/session", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SessionLoad(unitID string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.post("/api/v1/session/load", map[string]string{"unit_id": unitID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SessionControl(action string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.post("/api/v1/session/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SessionSource(sourceURL string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.post("/api/v1/session/source", map[string]string{"url": sourceURL}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Status() (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get("/api/v1/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
