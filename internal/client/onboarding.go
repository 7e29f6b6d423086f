package client

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
)

// Onboarding states, in the order a new account walks through them.
type OnboardingState string

const (
	StateUnauthenticated       OnboardingState = "UNAUTHENTICATED"
	StateEmailUnverified       OnboardingState = "EMAIL_UNVERIFIED"
	StateProfileIncomplete     OnboardingState = "PROFILE_INCOMPLETE"
	StatePhotoMissing          OnboardingState = "PHOTO_MISSING"
	StateAdditionalInfoMissing OnboardingState = "ADDITIONAL_INFO_MISSING"
	StateComplete              OnboardingState = "COMPLETE"
)

// Onboarding flow errors.
var (
	ErrInvalidCode      = errors.New("code must be exactly 6 digits")
	ErrNotAnImage       = errors.New("file must be an image")
	ErrNotAPDF          = errors.New("file must be a PDF")
	ErrImageTooLarge    = errors.New("image must be 5 MB or smaller")
	ErrFieldsIncomplete = errors.New("required fields are missing")
)

// codePattern is the only accepted verification code shape. Codes are
// checked locally before any request is sent.
var codePattern = regexp.MustCompile(`^\d{6}$`)

// MaxImageBytes is the avatar size cap.
const MaxImageBytes = 5 * 1024 * 1024

// Navigation tells the caller where to send the user next. It
// replaces the old fire-and-forget delayed redirect so callers can
// cancel or sequence navigation themselves.
type Navigation struct {
	Path string
}

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

// Profile is the client-side profile view used to derive the
// onboarding state.
type Profile struct {
	FirstName      string
	LastName       string
	Phone          string
	DateOfBirth    string
	Gender         string
	AvatarURL      string
	Nationality    string
	CurrentAddress string
}

// IsUserDetailsComplete reports whether the basic details step is
// done. All five fields are required.
func (p Profile) IsUserDetailsComplete() bool {
	return p.FirstName != "" && p.LastName != "" && p.Phone != "" &&
		p.DateOfBirth != "" && p.Gender != ""
}

// HasProfilePhoto reports whether a photo was uploaded.
func (p Profile) HasProfilePhoto() bool {
	return p.AvatarURL != ""
}

// AreAdditionalDetailsComplete reports whether the additional info
// step is done.
func (p Profile) AreAdditionalDetailsComplete() bool {
	return p.Nationality != "" && p.CurrentAddress != ""
}

// AreAllDetailsComplete reports whether every onboarding step is done.
func (p Profile) AreAllDetailsComplete() bool {
	return p.IsUserDetailsComplete() && p.HasProfilePhoto() && p.AreAdditionalDetailsComplete()
}

// ProfileFromUser builds a Profile view from a stored user object.
func ProfileFromUser(user map[string]interface{}) Profile {
	str := func(key string) string {
		s, _ := user[key].(string)
		return s
	}
	return Profile{
		FirstName:      str("firstName"),
		LastName:       str("lastName"),
		Phone:          str("phone"),
		DateOfBirth:    str("dateOfBirth"),
		Gender:         str("gender"),
		AvatarURL:      str("avatarUrl"),
		Nationality:    str("nationality"),
		CurrentAddress: str("currentAddress"),
	}
}

// Onboarding drives a user through signup, verification and profile
// completion.
type Onboarding struct {
	client *Client
}

// NewOnboarding creates an onboarding flow over the API client.
func NewOnboarding(client *Client) *Onboarding {
	return &Onboarding{client: client}
}

// State derives the current onboarding state from the session.
func (o *Onboarding) State(verified bool) OnboardingState {
	session := o.client.Session()
	if !session.LoggedIn() {
		return StateUnauthenticated
	}
	if !verified {
		return StateEmailUnverified
	}

	profile := ProfileFromUser(session.User())
	switch {
	case !profile.IsUserDetailsComplete():
		return StateProfileIncomplete
	case !profile.HasProfilePhoto():
		return StatePhotoMissing
	case !profile.AreAdditionalDetailsComplete():
		return StateAdditionalInfoMissing
	default:
		return StateComplete
	}
}

// NextPath returns where a user in the given state should go.
func NextPath(state OnboardingState) string {
	switch state {
	case StateUnauthenticated:
		return "/login"
	case StateEmailUnverified:
		return "/verify-email"
	case StateProfileIncomplete:
		return "/user-details"
	case StatePhotoMissing:
		return "/upload-photo"
	case StateAdditionalInfoMissing:
		return "/additional-info"
	default:
		return "/dashboard"
	}
}

// Signup validates locally, registers the account and returns the
// navigation to the verification page carrying the email.
func (o *Onboarding) Signup(ctx context.Context, email, password string) (Navigation, FieldErrors, error) {
	fieldErrs := FieldErrors{}
	if strings.TrimSpace(email) == "" {
		fieldErrs["email"] = "Email is required"
	}
	if password == "" {
		fieldErrs["password"] = "Password is required"
	}
	if len(fieldErrs) > 0 {
		return Navigation{}, fieldErrs, ErrFieldsIncomplete
	}

	if err := o.client.Signup(ctx, email, password); err != nil {
		return Navigation{}, nil, err
	}

	return Navigation{Path: "/verify-email?email=" + url.QueryEscape(email)}, nil, nil
}

// VerifyCode redeems a 6-digit code. Malformed codes are rejected
// locally without touching the network. For password resets the code
// is only checked, and navigation carries it to the reset form.
func (o *Onboarding) VerifyCode(ctx context.Context, code string, passwordReset bool) (Navigation, error) {
	if !codePattern.MatchString(code) {
		return Navigation{}, ErrInvalidCode
	}

	if passwordReset {
		if err := o.client.VerifyResetCode(ctx, code); err != nil {
			return Navigation{}, err
		}
		return Navigation{Path: "/reset-password?token=" + url.QueryEscape(code)}, nil
	}

	if _, err := o.client.VerifyEmail(ctx, code); err != nil {
		return Navigation{}, err
	}
	return Navigation{Path: NextPath(o.State(true))}, nil
}

// SubmitUserDetails validates and saves the basic details step. The
// national ID number is collected here even though the completeness
// predicate does not require it later.
func (o *Onboarding) SubmitUserDetails(ctx context.Context, firstName, lastName, phone, dateOfBirth, cnicNumber, gender string) (Navigation, FieldErrors, error) {
	fieldErrs := FieldErrors{}
	required := map[string]string{
		"firstName":   firstName,
		"lastName":    lastName,
		"phone":       phone,
		"dateOfBirth": dateOfBirth,
		"cnicNumber":  cnicNumber,
		"gender":      gender,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fieldErrs[field] = "This field is required"
		}
	}
	if len(fieldErrs) > 0 {
		return Navigation{}, fieldErrs, ErrFieldsIncomplete
	}

	err := o.client.UpdateProfile(ctx, map[string]interface{}{
		"firstName":   firstName,
		"lastName":    lastName,
		"phone":       phone,
		"dateOfBirth": dateOfBirth,
		"cnicNumber":  cnicNumber,
		"gender":      gender,
	})
	if err != nil {
		return Navigation{}, nil, err
	}

	return Navigation{Path: "/upload-photo"}, nil, nil
}

// CheckImage validates an avatar candidate locally. Only image MIME
// types up to 5 MB are accepted; nothing is uploaded on failure.
func CheckImage(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotAnImage
	}
	if size > MaxImageBytes {
		return ErrImageTooLarge
	}
	return nil
}

// SubmitPhoto uploads the avatar and moves to the next step.
func (o *Onboarding) SubmitPhoto(ctx context.Context, path string) (Navigation, error) {
	if _, err := o.client.UploadAvatar(ctx, path); err != nil {
		return Navigation{}, err
	}
	return Navigation{Path: "/additional-info"}, nil
}

// CheckDocument validates an identity document candidate locally.
// Only PDFs are accepted; nothing is uploaded on failure.
func CheckDocument(contentType string) error {
	if !strings.HasPrefix(contentType, "application/pdf") {
		return ErrNotAPDF
	}
	return nil
}

// documentContentType guesses the content type from the file
// extension for the local pre-upload check.
func documentContentType(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}

// AdditionalInfo is the payload for the final onboarding step: the
// study/work fields, the remaining profile details and the three
// identity documents.
type AdditionalInfo struct {
	Nationality          string
	CurrentAddress       string
	IsStudyingOrWorking  string
	InstitutionOrCompany string
	DocumentPath         string
	CnicFrontPath        string
	CnicBackPath         string
}

// SubmitAdditionalInfo validates and saves the final details step.
// All fields are required and each of the three documents must be a
// PDF; nothing is sent while any field error remains.
func (o *Onboarding) SubmitAdditionalInfo(ctx context.Context, info AdditionalInfo) (Navigation, FieldErrors, error) {
	fieldErrs := FieldErrors{}
	required := map[string]string{
		"nationality":          info.Nationality,
		"currentAddress":       info.CurrentAddress,
		"isStudyingOrWorking":  info.IsStudyingOrWorking,
		"institutionOrCompany": info.InstitutionOrCompany,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			fieldErrs[field] = "This field is required"
		}
	}
	documents := map[string]string{
		"document":  info.DocumentPath,
		"cnicFront": info.CnicFrontPath,
		"cnicBack":  info.CnicBackPath,
	}
	for field, path := range documents {
		if strings.TrimSpace(path) == "" {
			fieldErrs[field] = "A PDF file is required"
			continue
		}
		if err := CheckDocument(documentContentType(path)); err != nil {
			fieldErrs[field] = "Must be a PDF file"
		}
	}
	if len(fieldErrs) > 0 {
		return Navigation{}, fieldErrs, ErrFieldsIncomplete
	}

	if err := o.client.UploadDocuments(ctx, info.DocumentPath, info.CnicFrontPath, info.CnicBackPath); err != nil {
		return Navigation{}, nil, err
	}

	err := o.client.UpdateProfile(ctx, map[string]interface{}{
		"nationality":          info.Nationality,
		"currentAddress":       info.CurrentAddress,
		"isStudyingOrWorking":  info.IsStudyingOrWorking,
		"institutionOrCompany": info.InstitutionOrCompany,
	})
	if err != nil {
		return Navigation{}, nil, err
	}

	return Navigation{Path: "/dashboard"}, nil, nil
}
