package handlers

import (
	"errors"
	"strconv"

	"rezo-marketplace/internal/core/domain"
	"rezo-marketplace/internal/core/services"
	"rezo-marketplace/internal/pkg/pagination"
	"rezo-marketplace/internal/pkg/response"
	"rezo-marketplace/internal/pkg/validator"

	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PropertyHandler handles marketplace listing endpoints
type PropertyHandler struct {
	propertyService *services.PropertyService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *services.PropertyService) *PropertyHandler {
	return &PropertyHandler{propertyService: propertyService}
}

// Create creates a new listing
// @Summary Create listing
// @Description Create a property listing; requires the owner or builder role
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePropertyInput true "Listing data"
// @Success 201 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /properties [post]
func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreatePropertyInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	property, err := h.propertyService.Create(c.Context(), userID, &input)
	if err != nil {
		var verrs gpvalidator.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return response.UnprocessableEntity(c, validator.Describe(err))
		case errors.Is(err, services.ErrRoleRequired):
			return response.Forbidden(c, "Owner or builder role required to list properties")
		case errors.Is(err, services.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to create listing")
		}
	}

	return response.Created(c, "Listing created successfully", fiber.Map{
		"property": property,
	})
}

// List searches published listings
// @Summary Search listings
// @Description Search published listings with filters and pagination
// @Tags Properties
// @Accept json
// @Produce json
// @Param city query string false "City filter"
// @Param purpose query string false "SALE or RENT"
// @Param type query string false "Property type"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Router /properties [get]
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	minPrice, _ := strconv.ParseFloat(c.Query("minPrice", "0"), 64)
	maxPrice, _ := strconv.ParseFloat(c.Query("maxPrice", "0"), 64)

	input := &services.SearchPropertiesInput{
		City:     c.Query("city"),
		Purpose:  c.Query("purpose"),
		Type:     c.Query("type"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Offset:   params.Offset,
		Limit:    params.Limit,
	}

	properties, total, err := h.propertyService.Search(c.Context(), input)
	if err != nil {
		return response.InternalServerError(c, "Failed to search listings")
	}

	return response.Success(c, "Listings retrieved successfully",
		pagination.NewResponse(properties, params, total))
}

// GetByID returns one listing
// @Summary Get listing
// @Description Get a single listing by ID
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [get]
func (h *PropertyHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	property, err := h.propertyService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			return response.NotFound(c, "Listing not found")
		}
		return response.InternalServerError(c, "Failed to get listing")
	}

	return response.Success(c, "Listing retrieved successfully", fiber.Map{
		"property": property,
	})
}

// MyListings lists the user's own listings
// @Summary List my listings
// @Description List all listings created by the authenticated user
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /properties/mine [get]
func (h *PropertyHandler) MyListings(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	properties, err := h.propertyService.ListMine(c.Context(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list properties")
	}

	return response.Success(c, "Listings retrieved successfully", fiber.Map{
		"properties": properties,
	})
}

// Delete removes a listing
// @Summary Delete listing
// @Description Delete a listing; only the owner or an admin may delete
// @Tags Properties
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Property ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /properties/{id} [delete]
func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}
	role, _ := c.Locals("role").(string)
	isAdmin := role == string(domain.RoleAdmin)

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid property ID")
	}

	if err := h.propertyService.Delete(c.Context(), uint(id), userID, isAdmin); err != nil {
		switch {
		case errors.Is(err, services.ErrPropertyNotFound):
			return response.NotFound(c, "Listing not found")
		case errors.Is(err, services.ErrNotListingOwner):
			return response.Forbidden(c, "Only the listing owner may delete it")
		default:
			return response.InternalServerError(c, "Failed to delete listing")
		}
	}

	return response.Success(c, "Listing deleted successfully", nil)
}
