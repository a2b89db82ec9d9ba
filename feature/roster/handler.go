package roster

import (
	"bytes"
	"fmt"
	"io"

	"attendance-reconciler/core/logger"
	"attendance-reconciler/core/reconcile"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for attendance reconciliation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the roster routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/roster")
	group.Post("/reconcile", h.HandleReconcile)
	group.Get("/runs", h.HandleListRuns)
	group.Get("/runs/:id", h.HandleGetRun)
}

// ReconcileResponse is the JSON body returned by HandleReconcile.
type ReconcileResponse struct {
	RunID     string                 `json:"run_id"`
	Summary   reconcile.Summary      `json:"summary"`
	Entries   []Entry                `json:"entries"`
	Failures  []reconcile.FileResult `json:"failures,omitempty"`
	Persisted bool                   `json:"persisted"`
}

// HandleReconcile reconciles uploaded workbooks.
// @Summary Reconcile Attendance
// @Description Upload attendance workbooks and get the merged roster. With format=xlsx the report workbook is returned instead of JSON.
// @Tags roster
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "Attendance workbooks (.xlsx)"
// @Param format query string false "Response format (json or xlsx)"
// @Param persist query bool false "Store the run in the history"
// @Success 200 {object} ReconcileResponse "Merged roster"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /roster/reconcile [post]
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	inputs, err := readUploads(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	res, err := h.service.Reconcile(c.Context(), inputs)
	if err != nil {
		l.Error("Reconciliation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	persisted := false
	if c.QueryBool("persist") {
		if _, err := h.service.Persist(c.Context(), res, "upload"); err != nil {
			l.Error("Failed to persist run", zap.String("run_id", res.Run.ID), zap.Error(err))
			return c.Status(statusFor(err)).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		persisted = true
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := WriteReport(&buf, res.Entries); err != nil {
			l.Error("Failed to render report", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		c.Attachment(fmt.Sprintf("attendance-%s.xlsx", res.Run.ID))
		c.Set(fiber.HeaderContentType, ReportContentType)
		return c.Send(buf.Bytes())
	}

	return c.JSON(ReconcileResponse{
		RunID:     res.Run.ID,
		Summary:   res.Summary,
		Entries:   res.Entries,
		Failures:  res.Run.Failures(),
		Persisted: persisted,
	})
}

// HandleListRuns lists persisted runs.
// @Summary List Runs
// @Description List the most recent persisted reconciliation runs.
// @Tags roster
// @Produce json
// @Param limit query int false "Maximum number of runs" default(20)
// @Success 200 {array} models.Run "Runs"
// @Failure 503 {object} map[string]string "History disabled"
// @Router /roster/runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.ListRuns(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Failed to list runs", zap.Error(err))
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(runs)
}

// HandleGetRun returns one persisted run with its roster.
// @Summary Get Run
// @Description Get a persisted run and its ranked roster.
// @Tags roster
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} models.Run "Run"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /roster/runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.service.GetRun(c.Context(), c.Params("id"))
	if err != nil {
		if !errors.Is(err, ErrRunNotFound) {
			logger.WithRayID(h.service.logger, c).Error("Failed to get run", zap.Error(err))
		}
		return c.Status(statusFor(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrHistoryDisabled):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func readUploads(c *fiber.Ctx) ([]reconcile.Input, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errors.Wrap(err, "expected a multipart form with workbook files")
	}

	var inputs []reconcile.Input
	for _, fh := range form.File["files"] {
		if !IsWorkbookName(fh.Filename) {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open upload %s", fh.Filename)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "read upload %s", fh.Filename)
		}
		inputs = append(inputs, MemoryInput{Filename: fh.Filename, Data: data})
	}
	if len(inputs) == 0 {
		return nil, errors.Wrap(ErrNoWorkbooks, "in upload")
	}
	return inputs, nil
}
