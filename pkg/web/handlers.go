// Package web provides HTTP handlers and REST API endpoints for the dashboard
// widget engine.
package web

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/panelkit/panelkit/pkg/configsvc"
	"github.com/panelkit/panelkit/pkg/models"
	"github.com/panelkit/panelkit/pkg/registry"
	"github.com/panelkit/panelkit/pkg/services"
	"github.com/panelkit/panelkit/pkg/system"
)

type APIHandlers struct {
	dashboardService *services.Dashboard
	system           *system.System
	registry         *registry.Registry
	validator        *validator.Validate
}

func NewAPIHandlers(
	dashboardService *services.Dashboard,
	sys *system.System,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		dashboardService: dashboardService,
		system:           sys,
		registry:         sys.Registry(),
		validator:        validator,
	}
}

// GetWidgets lists the widget catalog, optionally filtered by search query or
// category.
func (h *APIHandlers) GetWidgets(c fiber.Ctx) error {
	var definitions []*models.WidgetDefinition

	switch {
	case c.Query("q") != "":
		definitions = h.registry.Search(c.Query("q"))
	case c.Query("category") != "":
		definitions = h.registry.ByCategory(c.Query("category"))
	default:
		definitions = h.registry.AllDefinitions()
	}

	summaries := make([]WidgetSummary, 0, len(definitions))

	for _, definition := range definitions {
		summaries = append(summaries, widgetSummary(definition))
	}

	return c.JSON(fiber.Map{
		"widgets": summaries,
		"count":   len(summaries),
	})
}

// GetWidget returns the full definition, including its configuration schema.
func (h *APIHandlers) GetWidget(c fiber.Ctx) error {
	definition := h.registry.Definition(c.Params("type"))
	if definition == nil {
		return notFound(c, "widget type not found")
	}

	return c.JSON(definition)
}

func (h *APIHandlers) GetDashboards(c fiber.Ctx) error {
	req := services.ListDashboardsRequest{Owner: c.Query("owner")}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return badRequest(c, "Invalid limit: "+limitStr)
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return badRequest(c, "Invalid offset: "+offsetStr)
		}

		req.Offset = offset
	}

	dashboards, err := h.dashboardService.List(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"dashboards": dashboards,
		"count":      len(dashboards),
	})
}

func (h *APIHandlers) CreateDashboard(c fiber.Ctx) error {
	req := &CreateDashboardRequest{}
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	dashboard, err := h.dashboardService.Create(c.Context(), &models.Dashboard{
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
		Owner:       req.Owner,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dashboard)
}

func (h *APIHandlers) GetDashboard(c fiber.Ctx) error {
	dashboard, err := h.dashboardService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			return notFound(c, "dashboard not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(dashboard)
}

func (h *APIHandlers) UpdateDashboard(c fiber.Ctx) error {
	req := &UpdateDashboardRequest{}
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	existing, err := h.dashboardService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			return notFound(c, "dashboard not found")
		}

		return handleServiceError(c, err)
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}

	if req.Description != nil {
		existing.Description = *req.Description
	}

	if req.Metadata != nil {
		existing.Metadata = req.Metadata
	}

	dashboard, err := h.dashboardService.Update(c.Context(), existing.ID, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(dashboard)
}

func (h *APIHandlers) DeleteDashboard(c fiber.Ctx) error {
	err := h.dashboardService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			return notFound(c, "dashboard not found")
		}

		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// OpenDashboard loads a dashboard into the editor store for mutation through
// the action endpoint.
func (h *APIHandlers) OpenDashboard(c fiber.Ctx) error {
	dashboard, err := h.dashboardService.Open(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			return notFound(c, "dashboard not found")
		}

		return handleServiceError(c, err)
	}

	h.system.Manager().SetDashboardID(dashboard.ID)

	return c.JSON(dashboard)
}

// SaveDashboard snapshots the editor store and persists dashboard plus dirty
// configurations, reporting per-configuration failures without failing the
// save.
func (h *APIHandlers) SaveDashboard(c fiber.Ctx) error {
	result, err := h.dashboardService.SaveCanvas(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, services.ErrDashboardNotFound) {
			return notFound(c, "dashboard not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(result)
}

// DispatchAction funnels one user action through the data-flow manager.
func (h *APIHandlers) DispatchAction(c fiber.Ctx) error {
	req := &ActionRequest{}
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result := h.system.Manager().HandleUserAction(c.Context(), models.UserAction{
		Type:     models.ActionType(req.Type),
		TargetID: req.TargetID,
		Node:     req.Node,
		Patch:    req.Patch,
		Config:   req.Config,
		NodeIDs:  req.NodeIDs,
	})

	if !result.OK() {
		return handleActionError(c, result.Err)
	}

	return c.JSON(ActionResponse{State: string(result.State)})
}

// GetNodeConfiguration returns a node's configuration, migrated to the
// current version if it was stored under an older one.
func (h *APIHandlers) GetNodeConfiguration(c fiber.Ctx) error {
	config, err := h.system.Configurations().Get(c.Context(), c.Params("nodeId"))
	if err != nil {
		if errors.Is(err, configsvc.ErrConfigNotFound) {
			return notFound(c, "configuration not found")
		}

		return handleServiceError(c, err)
	}

	return c.JSON(config)
}

// SetNodeConfiguration validates and stores a node's configuration through
// the data-flow manager.
func (h *APIHandlers) SetNodeConfiguration(c fiber.Ctx) error {
	req := &SetConfigurationRequest{}
	if err := c.Bind().JSON(req); err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	result := h.system.Manager().HandleUserAction(c.Context(), models.UserAction{
		Type:     models.ActionUpdateConfiguration,
		TargetID: c.Params("nodeId"),
		Config:   req.Config,
	})

	if !result.OK() {
		return handleActionError(c, result.Err)
	}

	return c.JSON(ActionResponse{State: string(result.State)})
}

// HealthCheck reports persistence health.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	message, healthy := h.dashboardService.HealthCheck(c.Context())
	if !healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "detail": message})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
