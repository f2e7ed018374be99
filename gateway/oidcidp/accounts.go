package oidcidp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-session-guard/gateway"
)

// accountClient calls the provider's account management endpoints, which sit
// outside the OAuth2 protocol.
type accountClient struct {
	baseURL    string
	httpClient *http.Client
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpResponse struct {
	ID string `json:"id"`
}

type recoverRequest struct {
	Email      string `json:"email"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type updateUserRequest struct {
	Password string `json:"password"`
}

type apiError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (c *accountClient) signUp(ctx context.Context, email, password string) (string, error) {
	var resp signUpResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/signup", "", signUpRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", fmt.Errorf("[accountClient.signUp] %w", err)
	}
	switch {
	case status == http.StatusConflict, apiErr.Code == "user_already_exists", apiErr.Code == "email_exists":
		return "", gateway.ErrDuplicateEmail
	case status >= 300:
		return "", fmt.Errorf("[accountClient.signUp] status %d: %s", status, apiErr.describe())
	case resp.ID == "":
		return "", fmt.Errorf("[accountClient.signUp] response missing id")
	}
	return resp.ID, nil
}

func (c *accountClient) recoverPassword(ctx context.Context, email, redirectURL string) error {
	status, apiErr, err := c.do(ctx, http.MethodPost, "/recover", "", recoverRequest{Email: email, RedirectTo: redirectURL}, nil)
	if err != nil {
		return fmt.Errorf("[accountClient.recoverPassword] %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("[accountClient.recoverPassword] status %d: %s", status, apiErr.describe())
	}
	return nil
}

func (c *accountClient) updatePassword(ctx context.Context, accessToken, password string) error {
	status, apiErr, err := c.do(ctx, http.MethodPut, "/user", accessToken, updateUserRequest{Password: password}, nil)
	if err != nil {
		return fmt.Errorf("[accountClient.updatePassword] %w", err)
	}
	switch {
	case status == http.StatusUnauthorized:
		return gateway.ErrNoSession
	case status >= 300:
		return fmt.Errorf("[accountClient.updatePassword] status %d: %s", status, apiErr.describe())
	}
	return nil
}

// do sends body as JSON and decodes a 2xx response into out. Non-2xx responses
// return their status and any decodable error body.
func (c *accountClient) do(ctx context.Context, method, path, bearer string, body, out any) (int, apiError, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, apiError{}, err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, apiError{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, apiError{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return resp.StatusCode, apiError{}, err
	}

	if resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(data, &apiErr)
		return resp.StatusCode, apiErr, nil
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, apiError{}, fmt.Errorf("[accountClient.do] decode response: %w", err)
		}
	}
	return resp.StatusCode, apiError{}, nil
}

func (e apiError) describe() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "unexpected response"
}

// revokeToken posts an RFC 7009 revocation request.
func revokeToken(ctx context.Context, client *http.Client, endpoint, clientID, clientSecret, token, hint string) error {
	form := url.Values{}
	form.Set("token", token)
	form.Set("token_type_hint", hint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(clientID), url.QueryEscape(clientSecret))

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("[oidcidp.revokeToken] status %d", resp.StatusCode)
	}
	return nil
}
