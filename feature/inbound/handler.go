package inbound

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"

	"challan-reconciler/core/export"
	"challan-reconciler/core/extractor"
	"challan-reconciler/core/logger"
	"challan-reconciler/core/reconcile"
	"challan-reconciler/core/session"
	"challan-reconciler/feature/archive"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for reconciliation sessions.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the session routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sessions")
	group.Post("/", h.HandleCreate)
	group.Get("/:id", h.HandleStatus)
	group.Delete("/:id", h.HandleReset)

	group.Post("/:id/challan", h.HandleUploadChallan)
	group.Put("/:id/challan", h.HandleSetChallan)
	group.Get("/:id/challan", h.HandleGetChallan)

	group.Post("/:id/stickers", h.HandleUploadStickers)
	group.Post("/:id/stickers/records", h.HandleAddStickers)
	group.Get("/:id/stickers", h.HandleGetStickers)

	group.Get("/:id/reconciliation", h.HandleReconcile)
	group.Post("/:id/reconciliation/archive", h.HandleArchive)
}

// HandleCreate opens a new session.
// @Summary Create Session
// @Description Opens an empty reconciliation session for one inbound delivery.
// @Tags sessions
// @Produce json
// @Success 201 {object} map[string]string "Session ID"
// @Failure 409 {object} map[string]string "Session limit reached"
// @Router /sessions [post]
func (h *Handler) HandleCreate(c *fiber.Ctx) error {
	id, err := h.service.CreateSession()
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// HandleStatus reports the session state.
// @Summary Session Status
// @Description Shows the challan number (or N/A), line count and number of scanned stickers.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} session.Status
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sessions/{id} [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	st, err := h.service.Status(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(st)
}

// HandleReset clears a session, or closes it with ?close=true.
// @Summary Clear Session
// @Description Clears the challan and the scanned sticker log. With close=true the session is removed.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param close query boolean false "Remove the session"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sessions/{id} [delete]
func (h *Handler) HandleReset(c *fiber.Ctx) error {
	id := c.Params("id")
	if c.QueryBool("close") {
		if err := h.service.Close(id); err != nil {
			return h.fail(c, err)
		}
		return c.JSON(fiber.Map{"status": "closed"})
	}
	if err := h.service.Reset(id); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "cleared"})
}

// HandleUploadChallan extracts a challan from an uploaded image.
// @Summary Upload Challan Image
// @Description Reads a photographed delivery challan and replaces the session challan.
// @Tags challan
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param file formData file true "Challan image"
// @Success 200 {object} reconcile.Challan
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 422 {object} map[string]string "Unreadable document"
// @Failure 502 {object} map[string]string "Extraction model unavailable"
// @Router /sessions/{id}/challan [post]
func (h *Handler) HandleUploadChallan(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart field 'file' is required"})
	}
	img, err := readImage(fh)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	challan, err := h.service.UploadChallan(c.UserContext(), c.Params("id"), img)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(challan)
}

// HandleSetChallan replaces the challan with a JSON record.
// @Summary Set Challan
// @Description Replaces the session challan with the given record, validated like extracted data.
// @Tags challan
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param challan body reconcile.Challan true "Challan"
// @Success 200 {object} reconcile.Challan
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /sessions/{id}/challan [put]
func (h *Handler) HandleSetChallan(c *fiber.Ctx) error {
	challan, err := extractor.DecodeChallan(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.service.SetChallan(c.Params("id"), challan); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(challan)
}

// HandleGetChallan returns the current challan.
// @Summary Get Challan
// @Tags challan
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} reconcile.Challan
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sessions/{id}/challan [get]
func (h *Handler) HandleGetChallan(c *fiber.Ctx) error {
	challan, err := h.service.Challan(c.Params("id"))
	if errors.Is(err, reconcile.ErrNoChallan) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(challan)
}

// HandleUploadStickers extracts stickers from uploaded images.
// @Summary Upload Sticker Images
// @Description Reads every uploaded sticker image and appends the readable ones in upload order. Unreadable images are listed under failures.
// @Tags stickers
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Session ID"
// @Param files formData file true "Sticker images"
// @Success 200 {object} StickerBatch
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /sessions/{id}/stickers [post]
func (h *Handler) HandleUploadStickers(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "multipart form with field 'files' is required"})
	}

	headers := form.File["files"]
	images := make([]extractor.Image, 0, len(headers))
	for _, fh := range headers {
		img, err := readImage(fh)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "file": fh.Filename})
		}
		images = append(images, img)
	}

	batch, err := h.service.UploadStickers(c.UserContext(), c.Params("id"), images)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(batch)
}

// HandleAddStickers appends sticker records.
// @Summary Add Sticker Records
// @Description Appends one sticker object or an array of them to the scan log.
// @Tags stickers
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param stickers body []reconcile.Sticker true "Stickers"
// @Success 200 {object} map[string]int "Scan log length"
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /sessions/{id}/stickers/records [post]
func (h *Handler) HandleAddStickers(c *fiber.Ctx) error {
	stickers, err := extractor.DecodeStickers(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	total, err := h.service.AddStickers(c.Params("id"), stickers)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"added": len(stickers), "total": total})
}

// HandleGetStickers returns the scan log.
// @Summary Get Stickers
// @Tags stickers
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} reconcile.Sticker
// @Failure 404 {object} map[string]string "Not Found"
// @Router /sessions/{id}/stickers [get]
func (h *Handler) HandleGetStickers(c *fiber.Ctx) error {
	stickers, err := h.service.Stickers(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stickers)
}

// HandleReconcile runs reconciliation and returns or downloads the report.
// @Summary Reconcile
// @Description Compares the challan with the scanned stickers. JSON returns the full report with summary; csv and xlsx download the table.
// @Tags reconciliation
// @Produce json
// @Produce octet-stream
// @Param id path string true "Session ID"
// @Param format query string false "json, csv or xlsx" Enums(json, csv, xlsx)
// @Success 200 {object} reconcile.Report
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 409 {object} map[string]string "No challan uploaded"
// @Router /sessions/{id}/reconciliation [get]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	report, err := h.service.Reconcile(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}

	if f == export.FormatJSON {
		return c.JSON(report)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, report, f); err != nil {
		return h.fail(c, err)
	}
	c.Set(fiber.HeaderContentType, f.ContentType())
	c.Attachment(export.FileName(report, f))
	return c.Send(buf.Bytes())
}

// HandleArchive reconciles and archives the report.
// @Summary Archive Reconciliation
// @Description Runs reconciliation and stores the report in the archive.
// @Tags reconciliation
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} models.ReportRecord
// @Failure 409 {object} map[string]string "No challan uploaded"
// @Failure 503 {object} map[string]string "Archive not configured"
// @Router /sessions/{id}/reconciliation/archive [post]
func (h *Handler) HandleArchive(c *fiber.Ctx) error {
	rec, err := h.service.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// fail maps service errors to responses.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	l := logger.WithRayID(h.logger, c)

	var exErr *extractor.ExtractionError
	status := fiber.StatusInternalServerError
	body := fiber.Map{"error": err.Error()}

	switch {
	case errors.Is(err, session.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, session.ErrLimitReached), errors.Is(err, reconcile.ErrNoChallan):
		status = fiber.StatusConflict
	case errors.Is(err, ErrNoImages):
		status = fiber.StatusBadRequest
	case errors.Is(err, ErrExtractorDisabled), errors.Is(err, archive.ErrDisabled):
		status = fiber.StatusServiceUnavailable
	case errors.Is(err, extractor.ErrModelUnavailable):
		status = fiber.StatusBadGateway
		l.Error("Extraction model unavailable", zap.Error(err))
	case errors.As(err, &exErr):
		status = fiber.StatusUnprocessableEntity
		body["raw"] = exErr.Raw
		l.Warn("Document could not be extracted", zap.String("type", string(exErr.DocType)), zap.Error(exErr.Err))
	default:
		l.Error("Request failed", zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

func readImage(fh *multipart.FileHeader) (extractor.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return extractor.Image{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extractor.Image{}, err
	}
	return extractor.Image{
		Data:     data,
		MIMEType: fh.Header.Get("Content-Type"),
		Name:     fh.Filename,
	}, nil
}
