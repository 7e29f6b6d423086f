package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestLoginStoresTokensAndAttachesBearer(t *testing.T) {
	var seenAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/auth/login":
			_, _ = w.Write([]byte(`{
				"data": {
					"accessToken": "acc-token",
					"refreshToken": "ref-token",
					"sessionId": "sess-1",
					"user": {"email": "a@b.com"}
				}
			}`))
		case "/profile":
			seenAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"data": {"user": {"email": "a@b.com", "firstName": "Ali"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)

	creds, err := c.Login(context.Background(), "a@b.com", "secret12", false)
	require.NoError(t, err)
	assert.Equal(t, "acc-token", creds.AccessToken)
	assert.Equal(t, "sess-1", creds.SessionID)

	// The extracted token rides on the next request as a Bearer header
	user, err := c.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer acc-token", seenAuth)

	// The profile reply was merged into the stored user
	assert.Equal(t, "Ali", user["firstName"])
	assert.Equal(t, "Ali", c.Session().User()["firstName"])
}

func TestLoginFlatEnvelope(t *testing.T) {
	srv, _ := countingServer(t, 200, `{
		"token": "flat-acc",
		"refresh_token": "flat-ref",
		"user": {"email": "a@b.com"}
	}`)

	c := newTestClient(t, srv.URL)
	creds, err := c.Login(context.Background(), "a@b.com", "secret12", false)
	require.NoError(t, err)

	assert.Equal(t, "flat-acc", creds.AccessToken)
	assert.Equal(t, "flat-ref", creds.RefreshToken)
	assert.True(t, c.Session().LoggedIn())
}

func TestLoginErrorSurfacesMessage(t *testing.T) {
	srv, _ := countingServer(t, 401, `{"message": "Invalid email or password"}`)

	c := newTestClient(t, srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong", false)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Status)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
	assert.False(t, c.Session().LoggedIn())
}

func TestLogoutClearsLocalStateEvenOnServerError(t *testing.T) {
	srv, _ := countingServer(t, 500, `{"message": "boom"}`)

	c := newTestClient(t, srv.URL)
	c.Session().SetCredentials(Credentials{
		AccessToken: "acc",
		User:        map[string]interface{}{"email": "a@b.com"},
	}, true)
	require.True(t, c.Session().LoggedIn())

	err := c.Logout(context.Background())

	assert.Error(t, err)
	assert.False(t, c.Session().LoggedIn())
	assert.Nil(t, c.Session().User())
}

func TestUploadAvatarStoresReturnedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(32<<20))
		_, _, err := r.FormFile("avatar")
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": {"avatarUrl": "/uploads/avatars/new.png"}}`))
	}))
	t.Cleanup(srv.Close)

	c := newTestClient(t, srv.URL)
	c.Session().SetCredentials(Credentials{
		AccessToken: "acc",
		User:        map[string]interface{}{"email": "a@b.com"},
	}, false)

	img := writeTempFile(t, "photo.png", []byte("fake png bytes"))
	url, err := c.UploadAvatar(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, "/uploads/avatars/new.png", url)
	assert.Equal(t, "/uploads/avatars/new.png", c.store.Get(KeyPhotoURL))
	assert.Equal(t, "/uploads/avatars/new.png", c.Session().User()["avatarUrl"])
}

func TestCheckRoles(t *testing.T) {
	srv, _ := countingServer(t, 200, `{"data": {"hasOwnerRole": true, "hasBuilderRole": false}}`)

	c := newTestClient(t, srv.URL)
	hasOwner, hasBuilder, err := c.CheckRoles(context.Background(), 42)
	require.NoError(t, err)

	assert.True(t, hasOwner)
	assert.False(t, hasBuilder)
}
