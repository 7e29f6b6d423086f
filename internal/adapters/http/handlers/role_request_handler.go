package handlers

import (
	"errors"
	"strconv"

	"rezo-marketplace/internal/core/domain"
	"rezo-marketplace/internal/core/services"
	"rezo-marketplace/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RoleRequestHandler handles ownership and builder role request endpoints
type RoleRequestHandler struct {
	roleRequestService *services.RoleRequestService
}

// NewRoleRequestHandler creates a new role request handler
func NewRoleRequestHandler(roleRequestService *services.RoleRequestService) *RoleRequestHandler {
	return &RoleRequestHandler{roleRequestService: roleRequestService}
}

// ApplyOwnership submits an ownership role request
// @Summary Apply for ownership role
// @Description Submit an ownership role request for review
// @Tags RoleRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /ownership-requests [post]
func (h *RoleRequestHandler) ApplyOwnership(c *fiber.Ctx) error {
	return h.apply(c, domain.KindOwnership)
}

// ApplyBuilder submits a builder role request
// @Summary Apply for builder role
// @Description Submit a builder role request for review
// @Tags RoleRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /builder-requests [post]
func (h *RoleRequestHandler) ApplyBuilder(c *fiber.Ctx) error {
	return h.apply(c, domain.KindBuilder)
}

func (h *RoleRequestHandler) apply(c *fiber.Ctx, kind domain.RoleRequestKind) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	request, err := h.roleRequestService.Apply(c.Context(), userID, kind)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestAlreadyPending):
			return response.Conflict(c, "A request of this type is already pending review")
		case errors.Is(err, services.ErrRoleAlreadyHeld):
			return response.Conflict(c, "You already hold this role")
		case errors.Is(err, services.ErrProfileIncomplete):
			return response.UnprocessableEntity(c, "Complete your profile before applying")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to submit request")
		}
	}

	return response.Created(c, "Request submitted for review", fiber.Map{
		"request": request.ToResponse(),
	})
}

// MyRequests lists the user's own role requests
// @Summary List my role requests
// @Description List all role requests submitted by the authenticated user
// @Tags RoleRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /role-requests/mine [get]
func (h *RoleRequestHandler) MyRequests(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.roleRequestService.MyRequests(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", fiber.Map{
		"requests": requests,
	})
}

// CheckRoles reports which submitter roles a user holds
// @Summary Check user roles
// @Description Report whether the user holds the owner and builder roles
// @Tags RoleRequests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /user-roles/{id}/check-roles [get]
func (h *RoleRequestHandler) CheckRoles(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid user ID")
	}

	status, err := h.roleRequestService.CheckRoles(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return response.NotFound(c, "User not found")
		}
		return response.InternalServerError(c, "Failed to check roles")
	}

	return response.Success(c, "Roles retrieved successfully", status)
}
