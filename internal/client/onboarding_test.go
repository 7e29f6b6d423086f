package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingServer returns a test server that counts requests and
// replies with the given status and body.
func countingServer(t *testing.T, status int, body string) (*httptest.Server, *int64) {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(baseURL, NewTokenStore(filepath.Join(t.TempDir(), "session.json")))
}

func TestVerifyCodeRejectsMalformedCodesLocally(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	bad := []string{"", "12345", "1234567", "12345a", "abcdef", " 123456", "12 456"}
	for _, code := range bad {
		_, err := onboarding.VerifyCode(context.Background(), code, false)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}

	// None of the rejections touched the network
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestVerifyCodeAcceptsSixDigits(t *testing.T) {
	srv, hits := countingServer(t, 200, `{
		"data": {"accessToken": "acc", "user": {"email": "a@b.com"}}
	}`)
	client := newTestClient(t, srv.URL)
	onboarding := NewOnboarding(client)

	nav, err := onboarding.VerifyCode(context.Background(), "123456", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))
	assert.NotEmpty(t, nav.Path)
	assert.Equal(t, "acc", client.Session().store.AccessToken())
}

func TestVerifyCodePasswordResetRoutesToResetForm(t *testing.T) {
	srv, _ := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	nav, err := onboarding.VerifyCode(context.Background(), "654321", true)
	require.NoError(t, err)
	assert.Equal(t, "/reset-password?token=654321", nav.Path)
}

func TestSignupNavigationEscapesEmail(t *testing.T) {
	srv, _ := countingServer(t, 201, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	nav, fieldErrs, err := onboarding.Signup(context.Background(), "a@b.com", "secret12")
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, "/verify-email?email=a%40b.com", nav.Path)
}

func TestSignupLocalFieldGuards(t *testing.T) {
	srv, hits := countingServer(t, 201, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	_, fieldErrs, err := onboarding.Signup(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	assert.Contains(t, fieldErrs, "email")
	assert.Contains(t, fieldErrs, "password")
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestSubmitUserDetailsFieldGuards(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	_, fieldErrs, err := onboarding.SubmitUserDetails(context.Background(), "Ali", "", "0300", "", "35202-1234567-1", "male")
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	assert.Contains(t, fieldErrs, "lastName")
	assert.Contains(t, fieldErrs, "dateOfBirth")
	assert.NotContains(t, fieldErrs, "firstName")
	assert.NotContains(t, fieldErrs, "cnicNumber")
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestSubmitUserDetailsRequiresEveryField(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	_, fieldErrs, err := onboarding.SubmitUserDetails(context.Background(), "", "", "", "", "", "")
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	for _, field := range []string{"firstName", "lastName", "phone", "dateOfBirth", "cnicNumber", "gender"} {
		assert.Contains(t, fieldErrs, field)
	}
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestSubmitUserDetailsRequiresCnicNumber(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	// Every field present except the national ID
	_, fieldErrs, err := onboarding.SubmitUserDetails(context.Background(), "Ali", "Khan", "0300-1234567", "1990-01-01", "", "male")
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	assert.Contains(t, fieldErrs, "cnicNumber")
	assert.Len(t, fieldErrs, 1)
	assert.Zero(t, atomic.LoadInt64(hits))
}

func completeAdditionalInfo(t *testing.T) AdditionalInfo {
	t.Helper()
	dir := t.TempDir()
	pdf := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o600))
		return path
	}
	return AdditionalInfo{
		Nationality:          "Pakistani",
		CurrentAddress:       "Lahore",
		IsStudyingOrWorking:  "working",
		InstitutionOrCompany: "Rezo",
		DocumentPath:         pdf("document.pdf"),
		CnicFrontPath:        pdf("front.pdf"),
		CnicBackPath:         pdf("back.pdf"),
	}
}

func TestSubmitAdditionalInfoRequiresEveryField(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	_, fieldErrs, err := onboarding.SubmitAdditionalInfo(context.Background(), AdditionalInfo{})
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	for _, field := range []string{
		"nationality", "currentAddress", "isStudyingOrWorking",
		"institutionOrCompany", "document", "cnicFront", "cnicBack",
	} {
		assert.Contains(t, fieldErrs, field)
	}
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestSubmitAdditionalInfoRejectsNonPDFDocuments(t *testing.T) {
	srv, hits := countingServer(t, 200, `{"success": true}`)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	info := completeAdditionalInfo(t)
	info.CnicFrontPath = filepath.Join(t.TempDir(), "front.png")

	_, fieldErrs, err := onboarding.SubmitAdditionalInfo(context.Background(), info)
	assert.ErrorIs(t, err, ErrFieldsIncomplete)
	assert.Contains(t, fieldErrs, "cnicFront")
	assert.NotContains(t, fieldErrs, "document")
	assert.Zero(t, atomic.LoadInt64(hits))
}

func TestSubmitAdditionalInfoUploadsDocumentsBeforeCompleting(t *testing.T) {
	var documentUploads, profileUpdates int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/profile/documents":
			atomic.AddInt64(&documentUploads, 1)
		case "/profile":
			atomic.AddInt64(&profileUpdates, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success": true, "data": {}}`))
	}))
	t.Cleanup(srv.Close)
	onboarding := NewOnboarding(newTestClient(t, srv.URL))

	nav, fieldErrs, err := onboarding.SubmitAdditionalInfo(context.Background(), completeAdditionalInfo(t))
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, "/dashboard", nav.Path)
	assert.Equal(t, int64(1), atomic.LoadInt64(&documentUploads))
	assert.Equal(t, int64(1), atomic.LoadInt64(&profileUpdates))
}

func TestCheckDocument(t *testing.T) {
	assert.NoError(t, CheckDocument("application/pdf"))
	assert.ErrorIs(t, CheckDocument("image/png"), ErrNotAPDF)
	assert.ErrorIs(t, CheckDocument("application/octet-stream"), ErrNotAPDF)
}

func TestCheckImage(t *testing.T) {
	assert.NoError(t, CheckImage("image/png", 1024))
	assert.NoError(t, CheckImage("image/jpeg", MaxImageBytes))
	assert.ErrorIs(t, CheckImage("application/pdf", 1024), ErrNotAnImage)
	assert.ErrorIs(t, CheckImage("image/png", MaxImageBytes+1), ErrImageTooLarge)
}

func TestProfileCompleteness(t *testing.T) {
	var p Profile
	assert.False(t, p.IsUserDetailsComplete())
	assert.False(t, p.HasProfilePhoto())
	assert.False(t, p.AreAdditionalDetailsComplete())
	assert.False(t, p.AreAllDetailsComplete())

	p.FirstName = "Ali"
	p.LastName = "Khan"
	p.Phone = "0300-1234567"
	p.DateOfBirth = "1990-01-01"
	assert.False(t, p.IsUserDetailsComplete(), "gender still missing")

	p.Gender = "male"
	assert.True(t, p.IsUserDetailsComplete())
	assert.False(t, p.AreAllDetailsComplete())

	p.AvatarURL = "/uploads/avatars/x.png"
	assert.True(t, p.HasProfilePhoto())
	assert.False(t, p.AreAllDetailsComplete())

	p.Nationality = "Pakistani"
	p.CurrentAddress = "Lahore"
	assert.True(t, p.AreAdditionalDetailsComplete())
	assert.True(t, p.AreAllDetailsComplete())
}

func TestOnboardingStateProgression(t *testing.T) {
	srv, _ := countingServer(t, 200, `{}`)
	client := newTestClient(t, srv.URL)
	onboarding := NewOnboarding(client)

	assert.Equal(t, StateUnauthenticated, onboarding.State(false))

	client.Session().SetCredentials(Credentials{
		AccessToken: "acc",
		User:        map[string]interface{}{"email": "a@b.com"},
	}, false)
	assert.Equal(t, StateEmailUnverified, onboarding.State(false))
	assert.Equal(t, StateProfileIncomplete, onboarding.State(true))

	client.Session().UpdateUser(map[string]interface{}{
		"firstName":   "Ali",
		"lastName":    "Khan",
		"phone":       "0300-1234567",
		"dateOfBirth": "1990-01-01",
		"gender":      "male",
	})
	assert.Equal(t, StatePhotoMissing, onboarding.State(true))

	client.Session().UpdateUser(map[string]interface{}{"avatarUrl": "/uploads/avatars/x.png"})
	assert.Equal(t, StateAdditionalInfoMissing, onboarding.State(true))

	client.Session().UpdateUser(map[string]interface{}{
		"nationality":    "Pakistani",
		"currentAddress": "Lahore",
	})
	assert.Equal(t, StateComplete, onboarding.State(true))
}
