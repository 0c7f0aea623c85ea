package churchtools

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Login starts a cookie session for username.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	_, err := c.send(ctx, http.MethodPost, "login", nil, []byte(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return fmt.Errorf("login to %s as %q: %w", c.baseURL, username, err)
	}
	return nil
}

// Whoami returns the authenticated person.
func (c *Client) Whoami(ctx context.Context) (Person, error) {
	var result envelope[Person]
	if err := c.getJSON(ctx, "whoami", nil, &result); err != nil {
		return Person{}, fmt.Errorf("authenticate: %w", err)
	}
	return result.Data, nil
}

// FetchCSRFToken obtains a CSRF token and sends it with every later request.
func (c *Client) FetchCSRFToken(ctx context.Context) error {
	var result envelope[string]
	if err := c.getJSON(ctx, "csrftoken", nil, &result); err != nil {
		return fmt.Errorf("obtain CSRF token: %w", err)
	}
	token := strings.TrimSpace(result.Data)
	if token == "" {
		return fmt.Errorf("obtain CSRF token: %w", ErrNoCSRFToken)
	}
	c.csrfToken = token
	return nil
}

// Info returns version information about the installation.
func (c *Client) Info(ctx context.Context) (Info, error) {
	var info Info
	if err := c.getJSON(ctx, "info", nil, &info); err != nil {
		return Info{}, fmt.Errorf("get info: %w", err)
	}
	return info, nil
}
