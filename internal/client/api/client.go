// Package api is the REST client the terminal chat uses to sign in.
package api

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

	"github.com/dmitrijs2005/mealmate/internal/common"
)

// Session is what a successful login yields.
type Session struct {
	Token  string
	UserID string
}

type User struct {
	ID           string  `json:"user_id"`
	Name         string  `json:"user_name"`
	Email        string  `json:"user_email"`
	CategoryType *string `json:"user_categorytype"`
}

// Error is a non-2xx answer from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap maps auth statuses onto the shared sentinels.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusForbidden:
		return common.ErrorForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	}
	return nil
}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, httpClient: httpClient}, nil
}

// ChatURL is the websocket endpoint on the same host.
func (c *Client) ChatURL() string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	return u.String()
}

func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body := map[string]string{"username": username, "password": password}

	var resp struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := c.do(ctx, http.MethodPost, "/user/login", nil, "", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" || resp.UserID == "" {
		return nil, errors.New("login response is missing token or userId")
	}
	return &Session{Token: resp.Token, UserID: resp.UserID}, nil
}

func (c *Client) UserInfo(ctx context.Context, s *Session) (*User, error) {
	var resp struct {
		User User `json:"user"`
	}
	q := url.Values{"userId": {s.UserID}}
	if err := c.do(ctx, http.MethodGet, "/user/getUserInfo", q, s.Token, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, in, out any) error {
	u := *c.baseURL
	u.Path += path
	u.RawQuery = query.Encode()

	var rd io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(b, &msg)
		if msg.Message == "" {
			msg.Message = msg.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
