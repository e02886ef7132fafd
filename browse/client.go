package browse

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
	"time"

	"github.com/elisa-rivadeneira/gestor-documentario/model"
)

// ErrUnauthorized marks a 401 from the backend: the session expired and
// local auth state must be cleared.
var ErrUnauthorized = errors.New("session expired")

// DocumentQuery carries the server-side listing parameters for documents.
type DocumentQuery struct {
	Kind      string
	Direction string
	Search    string
	SortBy    string
	Page      int
	PageSize  int
}

// ContractQuery carries the server-side listing parameters for contracts.
type ContractQuery struct {
	Search   string
	Page     int
	PageSize int
}

// DocumentList is a page of documents as returned by the backend.
type DocumentList struct {
	Items    []model.DocumentRecord `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// ContractList is a page of contracts as returned by the backend.
type ContractList struct {
	Items    []model.ContractRecord `json:"items"`
	Total    int                    `json:"total"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"page_size"`
}

// UserInfo identifies the authenticated viewer.
type UserInfo struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Admin    bool   `json:"admin"`
}

// API is the backend surface the browser depends on. Timeouts and retries
// live behind this interface, not in the engine.
type API interface {
	ListDocuments(ctx context.Context, q DocumentQuery) (*DocumentList, error)
	ListContracts(ctx context.Context, q ContractQuery) (*ContractList, error)
	DocumentNumbers(ctx context.Context) (map[int64]string, error)
	CurrentUser(ctx context.Context) (*UserInfo, error)
}

// Client is the HTTP implementation of API against the registry backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken replaces the bearer token, e.g. after a login.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) ListDocuments(ctx context.Context, q DocumentQuery) (*DocumentList, error) {
	params := url.Values{}
	if q.Kind != "" {
		params.Set("kind", q.Kind)
	}
	if q.Direction != "" {
		params.Set("direction", q.Direction)
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))

	var list DocumentList
	if err := c.get(ctx, "/api/documents", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) ListContracts(ctx context.Context, q ContractQuery) (*ContractList, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("page_size", strconv.Itoa(q.PageSize))

	var list ContractList
	if err := c.get(ctx, "/api/contracts", params, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DocumentNumbers(ctx context.Context) (map[int64]string, error) {
	var payload struct {
		Numbers map[string]string `json:"numbers"`
	}
	if err := c.get(ctx, "/api/documents/numbers", nil, &payload); err != nil {
		return nil, err
	}
	numbers := make(map[int64]string, len(payload.Numbers))
	for id, number := range payload.Numbers {
		v, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		numbers[v] = number
	}
	return numbers, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*UserInfo, error) {
	var user UserInfo
	if err := c.get(ctx, "/api/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token and installs it on the
// client.
func (c *Client) Login(ctx context.Context, username, password string) (*UserInfo, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login failed: status %d", resp.StatusCode)
	}
	var result struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Admin    bool   `json:"admin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parse login response: %w", err)
	}
	c.token = result.Token
	return &UserInfo{Username: result.Username, Name: result.Name, Admin: result.Admin}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend error: status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
