package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is where the phonebook service serves persons by default.
const DefaultBaseURL = "http://localhost:8888/api/persons"

type Person struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Candidate is the payload of create and update requests.
type Candidate struct {
	Name   string `json:"name"`
	Number string `json:"number"`
}

var (
	ErrNotFound   = errors.New("directory: not found")
	ErrValidation = errors.New("directory: validation failure")
	ErrNetwork    = errors.New("directory: network failure")
)

// StatusError is returned for non-2XX responses. It matches [ErrNotFound]
// for 404 and [ErrValidation] for 400 with [errors.Is].
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("directory: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("directory: %d %s", e.Status, e.Message)
}

func (e *StatusError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == ErrNotFound
	case http.StatusBadRequest:
		return target == ErrValidation
	default:
		return false
	}
}

// Client talks to the persons endpoints of a phonebook service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

var _ API = (*Client)(nil)

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimSuffix(baseURL, "/"), HTTPClient: hc}
}

func (c *Client) List(ctx context.Context) ([]Person, error) {
	var persons []Person
	err := c.do(ctx, http.MethodGet, "", nil, &persons)
	return persons, err
}

// Get returns the person with exactly this name.
func (c *Client) Get(ctx context.Context, name string) (Person, error) {
	var p Person
	err := c.do(ctx, http.MethodGet, "/"+url.PathEscape(name), nil, &p)
	return p, err
}

func (c *Client) Create(ctx context.Context, candidate Candidate) (Person, error) {
	var p Person
	err := c.do(ctx, http.MethodPost, "", candidate, &p)
	return p, err
}

func (c *Client) Update(ctx context.Context, id int64, candidate Candidate) (Person, error) {
	var p Person
	err := c.do(ctx, http.MethodPut, "/"+strconv.FormatInt(id, 10), candidate, &p)
	return p, err
}

// Delete returns the removed person.
func (c *Client) Delete(ctx context.Context, id int64) (Person, error) {
	var p Person
	err := c.do(ctx, http.MethodDelete, "/"+strconv.FormatInt(id, 10), nil, &p)
	return p, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 { //nolint: mnd // 2XX HTTP Status Codes
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &StatusError{Status: resp.StatusCode, Message: e.Error}
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrNetwork, method, req.URL.Path, err)
	}
	return nil
}
