package api

import (
	"context"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/definitions"
)

type UserInfo struct {
	Name             string           `json:"name"`
	Tags             definitions.Tags `json:"tags"`
	PasswordHash     string           `json:"password_hash"`
	HashingAlgorithm string           `json:"hashing_algorithm,omitempty"`
}

// CurrentUser is the response of GET /api/whoami.
//
//easyjson:json
type CurrentUser struct {
	Name string           `json:"name"`
	Tags definitions.Tags `json:"tags"`
}

// UserParams is the body of PUT /api/users/{name}. Either a password or a
// password hash, see package passwordhashing, should be set.
type UserParams struct {
	Name             string           `json:"-"`
	Password         string           `json:"password,omitempty"`
	PasswordHash     string           `json:"password_hash,omitempty"`
	HashingAlgorithm string           `json:"hashing_algorithm,omitempty"`
	Tags             definitions.Tags `json:"tags"`
}

func (c *Client) ListUsers(ctx context.Context) ([]UserInfo, error) {
	var users []UserInfo
	err := c.getJSON(ctx, "users", nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, name string) (UserInfo, error) {
	var u UserInfo
	if err := requireName("user", name); err != nil {
		return u, err
	}
	err := c.getJSON(ctx, pathOf("users", name), nil, &u)
	return u, err
}

// CurrentUser returns the user the client authenticates as.
func (c *Client) CurrentUser(ctx context.Context) (CurrentUser, error) {
	var u CurrentUser
	err := c.getJSON(ctx, "whoami", nil, &u)
	return u, err
}

func (c *Client) CreateUser(ctx context.Context, params UserParams) error {
	if err := requireName("user", params.Name); err != nil {
		return err
	}
	return c.putJSON(ctx, pathOf("users", params.Name), params)
}

func (c *Client) DeleteUser(ctx context.Context, name string, idempotently bool) error {
	if err := requireName("user", name); err != nil {
		return err
	}
	return c.deleteResource(ctx, pathOf("users", name), idempotently)
}

// DeleteUsers deletes several users in one request. Users that do not
// exist are ignored by the server.
func (c *Client) DeleteUsers(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	body := struct {
		Users []string `json:"users"`
	}{Users: names}
	return c.postJSON(ctx, pathOf("users", "bulk-delete"), body)
}
