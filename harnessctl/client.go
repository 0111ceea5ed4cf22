package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

type client struct {
	c   *http.Client
	url *url.URL
}

func newClient(u *url.URL) *client {
	return &client{c: &http.Client{}, url: u}
}

func (c *client) newRequest(method string, path string, v any) (*http.Request, error) {
	u := *c.url
	u.Path = path
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	r, err := http.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	if v != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	return r, nil
}

func (c *client) checkCode(resp *http.Response, code int) error {
	if resp.StatusCode != code {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return fmt.Errorf("error %d: %s", resp.StatusCode, b)
	}
	return nil
}

// Get fetches path the way the web view would, and returns the response
// body.
func (c *client) Get(path string) (string, error) {
	r, err := c.newRequest("GET", path, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.c.Do(r)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.checkCode(resp, http.StatusOK); err != nil {
		return "", err
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Send posts a command object to the bridge and returns the decoded
// response object.
func (c *client) Send(command map[string]any) (map[string]any, error) {
	r, err := c.newRequest("POST", "/", command)
	if err != nil {
		return nil, err
	}
	resp, err := c.c.Do(r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkCode(resp, http.StatusOK); err != nil {
		return nil, err
	}
	var response map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}
	return response, nil
}
