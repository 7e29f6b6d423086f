package handlers

import (
	"errors"
	"strconv"

	"rezo-marketplace/internal/core/services"
	"rezo-marketplace/internal/pkg/pagination"
	"rezo-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin review endpoints
type AdminHandler struct {
	roleRequestService *services.RoleRequestService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(roleRequestService *services.RoleRequestService) *AdminHandler {
	return &AdminHandler{roleRequestService: roleRequestService}
}

// ReviewRequest represents an approve or reject body
type ReviewRequest struct {
	Remark string `json:"remark"`
}

// ListPending lists role requests awaiting review
// @Summary List pending role requests
// @Description List role requests awaiting admin review
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /admin/role-requests [get]
func (h *AdminHandler) ListPending(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	requests, total, err := h.roleRequestService.ListPending(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list pending requests")
	}

	return response.Success(c, "Pending requests retrieved",
		pagination.NewResponse(requests, params, total))
}

// Approve approves a role request
// @Summary Approve role request
// @Description Approve a pending role request and grant the role
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body ReviewRequest false "Review remark"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/role-requests/{id}/approve [post]
func (h *AdminHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, true)
}

// Reject rejects a role request
// @Summary Reject role request
// @Description Reject a pending role request
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Param body body ReviewRequest false "Review remark"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/role-requests/{id}/reject [post]
func (h *AdminHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, false)
}

func (h *AdminHandler) review(c *fiber.Ctx, approve bool) error {
	reviewerID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var body ReviewRequest
	_ = c.BodyParser(&body) // Remark is optional

	if approve {
		result, err := h.roleRequestService.Approve(c.Context(), uint(id), reviewerID, body.Remark)
		if err != nil {
			return h.reviewError(c, err)
		}
		return response.Success(c, "Request approved", fiber.Map{"request": result.ToResponse()})
	}

	result, err := h.roleRequestService.Reject(c.Context(), uint(id), reviewerID, body.Remark)
	if err != nil {
		return h.reviewError(c, err)
	}
	return response.Success(c, "Request rejected", fiber.Map{"request": result.ToResponse()})
}

func (h *AdminHandler) reviewError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrRequestNotFound):
		return response.NotFound(c, "Request not found")
	case errors.Is(err, services.ErrRequestAlreadyReviewed):
		return response.Conflict(c, "Request has already been reviewed")
	default:
		return response.InternalServerError(c, "Failed to review request")
	}
}
