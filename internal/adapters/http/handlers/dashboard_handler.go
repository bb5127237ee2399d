package handlers

import (
	"biblio-circulate/internal/core/services"
	"biblio-circulate/internal/pkg/pagination"
	"biblio-circulate/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles reporting endpoints
type DashboardHandler struct {
	reportService *services.ReportService
	noteService   *services.CronService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(reportService *services.ReportService, noteService *services.CronService) *DashboardHandler {
	return &DashboardHandler{reportService: reportService, noteService: noteService}
}

// Dashboard returns the reporting aggregate
// @Summary Dashboard
// @Description Aggregate circulation and fine statistics (Librarian only)
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *fiber.Ctx) error {
	dash, err := h.reportService.GetDashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to build dashboard")
	}

	return response.Success(c, "Dashboard", dash)
}

// MyNotifications lists the authenticated user's overdue notices
// @Summary My notifications
// @Description List overdue notices generated for the authenticated user
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /notifications/me [get]
func (h *DashboardHandler) MyNotifications(c *fiber.Ctx) error {
	userID, _ := c.Locals("userID").(uint)
	params := pagination.GetParams(c)

	notes, total, err := h.noteService.ListByUser(c.Context(), userID, params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Success(c, "Notifications", pagination.NewResponse(notes, params, total))
}
