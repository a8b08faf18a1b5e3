package archive

import (
	"errors"
	"io"

	"challan-reconciler/core/export"
	"challan-reconciler/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves archived reports.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the archive routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/archives")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/download", h.HandleDownload)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList lists archived reports.
// @Summary List Archived Reports
// @Description Lists archived reconciliation runs, newest first, without their rows.
// @Tags archive
// @Produce json
// @Param limit query int false "Page size (default 50, max 500)"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} models.ReportRecord
// @Failure 503 {object} map[string]string "Archive database not configured"
// @Router /archives [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	records, err := h.service.List(c.UserContext(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(records)
}

// HandleGet returns one archived report.
// @Summary Get Archived Report
// @Description Returns an archived report with its rows in report order.
// @Tags archive
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} models.ReportRecord
// @Failure 404 {object} map[string]string "Not Found"
// @Router /archives/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(rec)
}

// HandleDownload streams an archived report as a file.
// @Summary Download Archived Report
// @Description Downloads an archived report as CSV, XLSX or JSON.
// @Tags archive
// @Produce octet-stream
// @Param id path string true "Report ID"
// @Param format query string false "csv, xlsx or json" Enums(csv, xlsx, json)
// @Success 200 {file} file
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /archives/{id}/download [get]
func (h *Handler) HandleDownload(c *fiber.Ctx) error {
	f, err := export.ParseFormat(c.Query("format", string(export.FormatCSV)))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	id := c.Params("id")
	rc, err := h.service.Open(c.UserContext(), id, f)
	if err != nil {
		return h.fail(c, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return h.fail(c, err)
	}

	c.Set(fiber.HeaderContentType, f.ContentType())
	c.Attachment("reconciliation_report_" + id + "." + f.Extension())
	return c.Send(data)
}

// HandleDelete removes an archived report.
// @Summary Delete Archived Report
// @Description Removes an archived report, its rows and its stored export files.
// @Tags archive
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 503 {object} map[string]string "Archive database not configured"
// @Router /archives/{id} [delete]
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrDisabled), errors.Is(err, ErrNoDatabase), errors.Is(err, ErrNoStorage):
		status = fiber.StatusServiceUnavailable
	default:
		logger.WithRayID(h.logger, c).Error("Archive request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
