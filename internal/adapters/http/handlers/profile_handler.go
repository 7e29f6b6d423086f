package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"rezo-marketplace/internal/config"
	"rezo-marketplace/internal/core/services"
	"rezo-marketplace/internal/pkg/response"
	"rezo-marketplace/internal/pkg/validator"

	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	profileService *services.ProfileService
	cfg            *config.Config
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService *services.ProfileService, cfg *config.Config) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		cfg:            cfg,
	}
}

// Get returns the current user's profile
// @Summary Get profile
// @Description Get the authenticated user's profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.profileService.Get(c.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to get profile")
	}

	return response.Success(c, "Profile retrieved successfully", fiber.Map{
		"user": result.User,
	})
}

// Update updates the current user's profile
// @Summary Update profile
// @Description Update profile fields; omitted fields are left untouched
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateProfileInput true "Profile fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [put]
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if _, err := h.profileService.Update(c.Context(), userID, &input); err != nil {
		var verrs gpvalidator.ValidationErrors
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.As(err, &verrs):
			return response.UnprocessableEntity(c, validator.Describe(err))
		default:
			return response.InternalServerError(c, "Failed to update profile")
		}
	}

	// Re-read through Get so the response carries the merged user view
	result, err := h.profileService.Get(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, "Profile updated successfully", fiber.Map{
		"user": result.User,
	})
}

// UploadAvatar handles profile photo upload
// @Summary Upload profile photo
// @Description Upload an image file (max 5 MB) as the profile photo
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image file"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/photo [post]
func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		return response.BadRequest(c, "Image file is required")
	}

	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return response.BadRequest(c, "Only image files are allowed")
	}
	if file.Size > int64(h.cfg.Upload.MaxAvatarMB)*1024*1024 {
		return response.BadRequest(c, fmt.Sprintf("Image must be smaller than %d MB", h.cfg.Upload.MaxAvatarMB))
	}

	publicURL, err := h.saveUpload(c, file, "avatars")
	if err != nil {
		return response.InternalServerError(c, "Failed to store image")
	}

	if _, err := h.profileService.SetAvatar(c.Context(), userID, publicURL); err != nil {
		return response.InternalServerError(c, "Failed to update profile photo")
	}

	return response.Success(c, "Profile photo uploaded successfully", fiber.Map{
		"avatarUrl": publicURL,
	})
}

// UploadDocuments handles identity document upload
// @Summary Upload identity documents
// @Description Upload ownership document and CNIC scans (PDF, max 10 MB each)
// @Tags Profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param document formData file false "Ownership document"
// @Param cnicFront formData file false "CNIC front scan"
// @Param cnicBack formData file false "CNIC back scan"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/documents [post]
func (h *ProfileHandler) UploadDocuments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	urls := make(map[string]string, 3)
	fields := []struct {
		field  string
		subdir string
	}{
		{"document", "documents"},
		{"cnicFront", "cnic"},
		{"cnicBack", "cnic"},
	}

	for _, f := range fields {
		file, err := c.FormFile(f.field)
		if err != nil {
			continue // Field not present, skip
		}
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "application/pdf") {
			return response.BadRequest(c, fmt.Sprintf("File %s must be a PDF", f.field))
		}
		if file.Size > int64(h.cfg.Upload.MaxDocMB)*1024*1024 {
			return response.BadRequest(c, fmt.Sprintf("File %s must be smaller than %d MB", f.field, h.cfg.Upload.MaxDocMB))
		}
		publicURL, err := h.saveUpload(c, file, f.subdir)
		if err != nil {
			return response.InternalServerError(c, "Failed to store document")
		}
		urls[f.field] = publicURL
	}

	if len(urls) == 0 {
		return response.BadRequest(c, "At least one document file is required")
	}

	if _, err := h.profileService.SetDocuments(c.Context(), userID, urls["document"], urls["cnicFront"], urls["cnicBack"]); err != nil {
		return response.InternalServerError(c, "Failed to update documents")
	}

	return response.Success(c, "Documents uploaded successfully", fiber.Map{
		"documentUrl":  urls["document"],
		"cnicFrontUrl": urls["cnicFront"],
		"cnicBackUrl":  urls["cnicBack"],
	})
}

// Completeness returns the onboarding completeness flags
// @Summary Get profile completeness
// @Description Report which onboarding steps are complete for the user
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile/completeness [get]
func (h *ProfileHandler) Completeness(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.profileService.Completeness(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check profile completeness")
	}

	return response.Success(c, "Profile completeness retrieved", result)
}

// saveUpload writes the uploaded file under the upload dir and returns its public URL
func (h *ProfileHandler) saveUpload(c *fiber.Ctx, file *multipart.FileHeader, subdir string) (string, error) {
	dir := filepath.Join(h.cfg.Upload.Dir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	ext := filepath.Ext(file.Filename)
	name := uuid.New().String() + ext
	if err := c.SaveFile(file, filepath.Join(dir, name)); err != nil {
		return "", err
	}

	return h.cfg.Upload.PublicPrefix + "/" + subdir + "/" + name, nil
}
