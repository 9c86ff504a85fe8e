// Copyright 2025 The fawa Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package client is a Go client for the file manager HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fawa-io/filemanager/pkg/model"
)

const tokenHeader = "X-Token"

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New returns a client for baseURL. A nil httpClient uses
// http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// SetToken sets the session token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body any, setup func(*http.Request)) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}
	if setup != nil {
		setup(req)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return nil, &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	return resp, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) Register(ctx context.Context, email, password string) (*model.User, error) {
	var u model.User
	err := c.call(ctx, http.MethodPost, "/users", map[string]string{"email": email, "password": password}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Connect logs in and keeps the returned token on the client.
func (c *Client) Connect(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/connect", nil, func(r *http.Request) {
		r.SetBasicAuth(email, password)
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

func (c *Client) Disconnect(ctx context.Context) error {
	if err := c.call(ctx, http.MethodGet, "/disconnect", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodGet, "/users/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Upload describes a node to create. Data is raw bytes and is encoded
// by the client.
type Upload struct {
	Name     string
	Kind     model.Kind
	Parent   model.ParentRef
	IsPublic bool
	Data     []byte
}

func (c *Client) Upload(ctx context.Context, u Upload) (*model.FileNode, error) {
	body := map[string]any{
		"name":     u.Name,
		"type":     u.Kind,
		"parentId": u.Parent,
		"isPublic": u.IsPublic,
	}
	if u.Kind.HasContent() {
		body["data"] = base64.StdEncoding.EncodeToString(u.Data)
	}
	var n model.FileNode
	if err := c.call(ctx, http.MethodPost, "/files", body, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) Get(ctx context.Context, id string) (*model.FileNode, error) {
	var n model.FileNode
	if err := c.call(ctx, http.MethodGet, "/files/"+url.PathEscape(id), nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *Client) List(ctx context.Context, parent model.ParentRef, page int) ([]*model.FileNode, error) {
	q := url.Values{}
	q.Set("parentId", parent.String())
	q.Set("page", strconv.Itoa(page))
	var nodes []*model.FileNode
	if err := c.call(ctx, http.MethodGet, "/files?"+q.Encode(), nil, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (c *Client) SetPublic(ctx context.Context, id string, public bool) (*model.FileNode, error) {
	action := "unpublish"
	if public {
		action = "publish"
	}
	var n model.FileNode
	if err := c.call(ctx, http.MethodPut, "/files/"+url.PathEscape(id)+"/"+action, nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Data downloads node content and returns it with its Content-Type.
func (c *Client) Data(ctx context.Context, id string) ([]byte, string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(id)+"/data", nil, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

func (c *Client) Status(ctx context.Context) (*Status, error) {
	var s Status
	if err := c.call(ctx, http.MethodGet, "/status", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

type Stats struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.call(ctx, http.MethodGet, "/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
