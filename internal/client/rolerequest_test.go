package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeUser() map[string]interface{} {
	return map[string]interface{}{
		"email":          "a@b.com",
		"firstName":      "Ali",
		"lastName":       "Khan",
		"phone":          "0300-1234567",
		"dateOfBirth":    "1990-01-01",
		"gender":         "male",
		"avatarUrl":      "/uploads/avatars/x.png",
		"nationality":    "Pakistani",
		"currentAddress": "Lahore",
	}
}

func loggedInFlow(t *testing.T, baseURL string, user map[string]interface{}) *RoleRequestFlow {
	t.Helper()
	c := newTestClient(t, baseURL)
	c.Session().SetCredentials(Credentials{AccessToken: "acc", User: user}, false)
	return NewRoleRequestFlow(c)
}

func TestApplyIncompleteProfileNoNetwork(t *testing.T) {
	srv, hits := countingServer(t, 201, `{"success": true}`)
	user := completeUser()
	delete(user, "avatarUrl")
	flow := loggedInFlow(t, srv.URL, user)

	nav, err := flow.Apply(context.Background(), KindOwnership)

	assert.ErrorIs(t, err, ErrProfileIncomplete)
	assert.Equal(t, "/user-details", nav.Path)
	assert.Zero(t, atomic.LoadInt64(hits))
	assert.Equal(t, StatusNone, flow.Status(KindOwnership))
}

func TestApplyMarksPendingOptimistically(t *testing.T) {
	srv, hits := countingServer(t, 201, `{"success": true}`)
	flow := loggedInFlow(t, srv.URL, completeUser())

	_, err := flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, flow.Status(KindOwnership))
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))

	// Applying again while pending is a silent local no-op
	_, err = flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(hits))
}

func TestApplyAdoptsServerSidePending(t *testing.T) {
	srv, _ := countingServer(t, 409, `{"message": "A request of this type is already pending review"}`)
	flow := loggedInFlow(t, srv.URL, completeUser())

	_, err := flow.Apply(context.Background(), KindBuilder)

	require.NoError(t, err)
	assert.Equal(t, StatusPending, flow.Status(KindBuilder))
}

func TestApplyKindsTrackedSeparately(t *testing.T) {
	srv, _ := countingServer(t, 201, `{"success": true}`)
	flow := loggedInFlow(t, srv.URL, completeUser())

	_, err := flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, flow.Status(KindOwnership))
	assert.Equal(t, StatusNone, flow.Status(KindBuilder))
}

func TestReconcileServerStatusOverwritesLocal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/user-roles/7/check-roles":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{"hasOwnerRole": false, "hasBuilderRole": false},
			})
		case r.URL.Path == "/role-requests/mine":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"requests": []map[string]interface{}{
						{"kind": "OWNERSHIP", "status": "APPROVED"},
					},
				},
			})
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success": true}`))
		}
	}))
	t.Cleanup(srv.Close)

	flow := loggedInFlow(t, srv.URL, completeUser())
	_, err := flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)
	require.Equal(t, StatusPending, flow.Status(KindOwnership))

	require.NoError(t, flow.Reconcile(context.Background(), 7))

	assert.Equal(t, StatusApproved, flow.Status(KindOwnership))
}

func TestReconcileNeverClearsLocalPending(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/user-roles/7/check-roles":
			_, _ = w.Write([]byte(`{"data": {"hasOwnerRole": false, "hasBuilderRole": false}}`))
		case r.URL.Path == "/role-requests/mine":
			// Listing lags behind the accepted request
			_, _ = w.Write([]byte(`{"data": {"requests": []}}`))
		default:
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success": true}`))
		}
	}))
	t.Cleanup(srv.Close)

	flow := loggedInFlow(t, srv.URL, completeUser())
	_, err := flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)

	require.NoError(t, flow.Reconcile(context.Background(), 7))

	assert.Equal(t, StatusPending, flow.Status(KindOwnership))
}

func TestDisplayPrecedence(t *testing.T) {
	srv, _ := countingServer(t, 201, `{"success": true}`)
	flow := loggedInFlow(t, srv.URL, completeUser())

	// Nothing yet: both buttons invite an application
	assert.Equal(t, DisplayApply, flow.Display(KindOwnership))
	assert.Equal(t, DisplayApply, flow.Display(KindBuilder))

	// Pending disables its own button only
	_, err := flow.Apply(context.Background(), KindOwnership)
	require.NoError(t, err)
	assert.Equal(t, DisplayPending, flow.Display(KindOwnership))
	assert.Equal(t, DisplayApply, flow.Display(KindBuilder))

	// Holding one role routes it to the dashboard and hides the other
	flow.holds[KindOwnership] = true
	assert.Equal(t, DisplayDashboard, flow.Display(KindOwnership))
	assert.Equal(t, DisplayHidden, flow.Display(KindBuilder))
}
