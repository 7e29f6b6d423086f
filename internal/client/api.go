package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"time"
)

// Client is the HTTP API client. It attaches the stored access token
// as a Bearer header and carries server cookies in a jar.
type Client struct {
	BaseURL string

	http    *http.Client
	store   *TokenStore
	session *Session
}

// New creates a client over the given store.
func New(baseURL string, store *TokenStore) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Jar:     jar,
		},
		store:   store,
		session: NewSession(store),
	}
}

// Session returns the session bound to this client.
func (c *Client) Session() *Session {
	return c.session
}

// Login authenticates and stores the returned credentials.
func (c *Client) Login(ctx context.Context, email, password string, remember bool) (Credentials, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return Credentials{}, err
	}

	creds := ExtractCredentials(body)
	c.session.SetCredentials(creds, remember)
	return creds, nil
}

// Signup registers a new account. No credentials are returned; the
// account must verify its email first.
func (c *Client) Signup(ctx context.Context, email, password string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	return err
}

// VerifyEmail redeems a verification code and stores the returned
// credentials.
func (c *Client) VerifyEmail(ctx context.Context, code string) (Credentials, error) {
	body, err := c.doJSON(ctx, http.MethodPost, "/auth/verify-email", map[string]string{
		"code": code,
	})
	if err != nil {
		return Credentials{}, err
	}

	creds := ExtractCredentials(body)
	c.session.SetCredentials(creds, true)
	return creds, nil
}

// RequestPasswordReset asks the server to send a reset code.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/password-reset", map[string]string{
		"email": email,
	})
	return err
}

// VerifyResetCode checks a reset code without consuming it.
func (c *Client) VerifyResetCode(ctx context.Context, code string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/password-reset/verify", map[string]string{
		"code": code,
	})
	return err
}

// ConfirmPasswordReset consumes the reset code and sets the new
// password.
func (c *Client) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/password-reset/confirm", map[string]string{
		"code":        code,
		"newPassword": newPassword,
	})
	return err
}

// Profile fetches the profile and merges it into the stored user.
func (c *Client) Profile(ctx context.Context) (map[string]interface{}, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/profile", nil)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Data struct {
			User map[string]interface{} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, err
	}

	if reply.Data.User != nil {
		c.session.UpdateUser(reply.Data.User)
	}
	return reply.Data.User, nil
}

// UpdateProfile sends a partial profile update and merges the reply
// into the stored user.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]interface{}) error {
	body, err := c.doJSON(ctx, http.MethodPatch, "/profile", fields)
	if err != nil {
		return err
	}

	var reply struct {
		Data struct {
			User map[string]interface{} `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err == nil && reply.Data.User != nil {
		c.session.UpdateUser(reply.Data.User)
	}
	return nil
}

// UploadAvatar uploads a profile photo and stores the returned URL.
func (c *Client) UploadAvatar(ctx context.Context, path string) (string, error) {
	body, err := c.doMultipart(ctx, "/profile/photo", map[string]string{"avatar": path})
	if err != nil {
		return "", err
	}

	var reply struct {
		Data struct {
			AvatarURL string `json:"avatarUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return "", err
	}

	if reply.Data.AvatarURL != "" {
		c.store.Set(KeyPhotoURL, reply.Data.AvatarURL, true)
		c.session.UpdateUser(map[string]interface{}{"avatarUrl": reply.Data.AvatarURL})
	}
	return reply.Data.AvatarURL, nil
}

// UploadDocuments uploads identity documents. Empty paths are
// skipped.
func (c *Client) UploadDocuments(ctx context.Context, documentPath, cnicFrontPath, cnicBackPath string) error {
	files := make(map[string]string, 3)
	if documentPath != "" {
		files["document"] = documentPath
	}
	if cnicFrontPath != "" {
		files["cnicFront"] = cnicFrontPath
	}
	if cnicBackPath != "" {
		files["cnicBack"] = cnicBackPath
	}

	body, err := c.doMultipart(ctx, "/profile/documents", files)
	if err != nil {
		return err
	}

	var reply struct {
		Data struct {
			DocumentURL  string `json:"documentUrl"`
			CnicFrontURL string `json:"cnicFrontUrl"`
			CnicBackURL  string `json:"cnicBackUrl"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return err
	}

	if reply.Data.DocumentURL != "" {
		c.store.Set(KeyDocumentURL, reply.Data.DocumentURL, true)
	}
	if reply.Data.CnicFrontURL != "" {
		c.store.Set(KeyCnicFrontURL, reply.Data.CnicFrontURL, true)
	}
	if reply.Data.CnicBackURL != "" {
		c.store.Set(KeyCnicBackURL, reply.Data.CnicBackURL, true)
	}
	return nil
}

// Completeness fetches the onboarding completeness flags.
func (c *Client) Completeness(ctx context.Context) (map[string]bool, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/profile/completeness", nil)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

// ApplyOwnership submits an ownership role request.
func (c *Client) ApplyOwnership(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/ownership-requests", nil)
	return err
}

// ApplyBuilder submits a builder role request.
func (c *Client) ApplyBuilder(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/builder-requests", nil)
	return err
}

// MyRequests lists the account's role requests.
func (c *Client) MyRequests(ctx context.Context) ([]map[string]interface{}, error) {
	body, err := c.doJSON(ctx, http.MethodGet, "/role-requests/mine", nil)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Data struct {
			Requests []map[string]interface{} `json:"requests"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, err
	}
	return reply.Data.Requests, nil
}

// CheckRoles reports which submitter roles a user holds.
func (c *Client) CheckRoles(ctx context.Context, userID uint) (hasOwner, hasBuilder bool, err error) {
	body, err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/user-roles/%d/check-roles", userID), nil)
	if err != nil {
		return false, false, err
	}

	var reply struct {
		Data struct {
			HasOwnerRole   bool `json:"hasOwnerRole"`
			HasBuilderRole bool `json:"hasBuilderRole"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return false, false, err
	}
	return reply.Data.HasOwnerRole, reply.Data.HasBuilderRole, nil
}

// Logout revokes the session server-side, then clears local state.
// Local state is cleared even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.doJSON(ctx, http.MethodPost, "/auth/logout", nil)
	c.session.LogOut()
	return err
}

// doJSON performs a JSON request against the API and returns the raw
// body. Non-2xx replies become *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.do(req)
}

// doMultipart uploads the given files as a multipart form.
func (c *Client) doMultipart(ctx context.Context, path string, files map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, filePath := range files {
		f, err := os.Open(filePath)
		if err != nil {
			return nil, err
		}
		part, err := writer.CreateFormFile(field, filepath.Base(filePath))
		if err != nil {
			f.Close()
			return nil, err
		}
		if _, err := io.Copy(part, f); err != nil {
			f.Close()
			return nil, err
		}
		f.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	return c.do(req)
}

func (c *Client) authorize(req *http.Request) {
	if token := c.store.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, NewAPIError(resp.StatusCode, body)
	}
	return body, nil
}
