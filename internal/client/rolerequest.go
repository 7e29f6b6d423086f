package client

import (
	"context"
	"errors"
)

// RequestKind identifies the role being applied for.
type RequestKind string

const (
	KindOwnership RequestKind = "OWNERSHIP"
	KindBuilder   RequestKind = "BUILDER"
)

// Request statuses as the server reports them. StatusNone means no
// request exists yet.
const (
	StatusNone     = ""
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Display actions for the apply buttons.
type DisplayAction string

const (
	DisplayDashboard DisplayAction = "GO_TO_DASHBOARD"
	DisplayPending   DisplayAction = "PENDING_DISABLED"
	DisplayApply     DisplayAction = "APPLY"
	DisplayHidden    DisplayAction = "HIDDEN"
)

// ErrProfileIncomplete is returned when applying before onboarding is
// finished. No request leaves the client in that case.
var ErrProfileIncomplete = errors.New("profile must be complete before applying")

// RoleRequestFlow manages ownership and builder applications. A
// successful apply marks the kind PENDING locally right away; the
// local mark stays authoritative until the server reports a real
// status, so a slow listing fetch cannot re-enable the button.
type RoleRequestFlow struct {
	client *Client

	local map[RequestKind]string
	holds map[RequestKind]bool
}

// NewRoleRequestFlow creates a flow over the API client.
func NewRoleRequestFlow(client *Client) *RoleRequestFlow {
	return &RoleRequestFlow{
		client: client,
		local:  make(map[RequestKind]string),
		holds:  make(map[RequestKind]bool),
	}
}

// Apply submits a role request.
// Incomplete profiles are turned away locally with a redirect to the
// details page. An already-pending kind is a silent no-op.
func (f *RoleRequestFlow) Apply(ctx context.Context, kind RequestKind) (Navigation, error) {
	// 1. Gate on profile completeness without touching the network
	profile := ProfileFromUser(f.client.Session().User())
	if !profile.AreAllDetailsComplete() {
		return Navigation{Path: "/user-details"}, ErrProfileIncomplete
	}

	// 2. A locally pending request means nothing to do
	if f.Status(kind) == StatusPending {
		return Navigation{}, nil
	}

	// 3. Submit
	var err error
	switch kind {
	case KindBuilder:
		err = f.client.ApplyBuilder(ctx)
	default:
		err = f.client.ApplyOwnership(ctx)
	}
	if err != nil {
		// A 409 means a request is already pending server-side;
		// adopt that as the local status
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 409 {
			f.local[kind] = StatusPending
			return Navigation{}, nil
		}
		return Navigation{}, err
	}

	// 4. Mark pending optimistically
	f.local[kind] = StatusPending
	return Navigation{}, nil
}

// Status returns the effective status for a kind. The optimistic
// local PENDING wins until Reconcile sees a real server status.
func (f *RoleRequestFlow) Status(kind RequestKind) string {
	return f.local[kind]
}

// HoldsRole reports whether the account already holds the role.
func (f *RoleRequestFlow) HoldsRole(kind RequestKind) bool {
	return f.holds[kind]
}

// Reconcile refreshes local state from the server. A server status of
// none never clears a local PENDING; a real status always overwrites
// it.
func (f *RoleRequestFlow) Reconcile(ctx context.Context, userID uint) error {
	hasOwner, hasBuilder, err := f.client.CheckRoles(ctx, userID)
	if err != nil {
		return err
	}
	f.holds[KindOwnership] = hasOwner
	f.holds[KindBuilder] = hasBuilder

	requests, err := f.client.MyRequests(ctx)
	if err != nil {
		return err
	}

	for _, req := range requests {
		kindStr, _ := req["kind"].(string)
		status, _ := req["status"].(string)
		if kindStr == "" || status == StatusNone {
			continue
		}
		f.local[RequestKind(kindStr)] = status
	}
	return nil
}

// Display decides what the apply button for a kind should show.
// Holding either role hides both apply buttons.
func (f *RoleRequestFlow) Display(kind RequestKind) DisplayAction {
	if f.holds[kind] {
		return DisplayDashboard
	}
	if f.holds[KindOwnership] || f.holds[KindBuilder] {
		return DisplayHidden
	}
	if f.Status(kind) == StatusPending {
		return DisplayPending
	}
	return DisplayApply
}
