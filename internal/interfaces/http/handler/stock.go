package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/infrastructure/export"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// StockHandler serves the kiosk and the movement ledger
type StockHandler struct {
	BaseHandler
	ledgerService   *appinv.LedgerService
	reportService   *appinv.ReportService
	warehouseMarker string
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledgerService *appinv.LedgerService, reportService *appinv.ReportService, warehouseMarker string) *StockHandler {
	return &StockHandler{
		ledgerService:   ledgerService,
		reportService:   reportService,
		warehouseMarker: warehouseMarker,
	}
}

// KioskCatalog godoc
// @Summary      Kiosk form data
// @Description  Handlers (without the system actor), categories and items with their
// @Description  variants sorted by spec number.
// @Tags         kiosk
// @Produce      json
// @Param        category_id query string false "Category ID"
// @Success      200 {object} dto.Response{data=appinv.KioskCatalogResponse}
// @Router       /kiosk/catalog [get]
func (h *StockHandler) KioskCatalog(c *gin.Context) {
	result, err := h.reportService.KioskCatalog(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// StockIn godoc
// @Summary      Add stock
// @Description  Applies every line independently. Failed lines are reported and applied
// @Description  lines are kept.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Submission key"
// @Param        request body appinv.BulkMoveRequest true "Lines"
// @Success      200 {object} dto.Response{data=appinv.BulkMoveResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{data=appinv.BulkMoveResult,error=dto.ErrorInfo}
// @Router       /stock/in [post]
func (h *StockHandler) StockIn(c *gin.Context) {
	h.bulkMove(c, inventory.DirectionIn)
}

// StockOut godoc
// @Summary      Consume stock
// @Description  Applies every line independently. Lines exceeding the current quantity fail
// @Description  without affecting the others.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Submission key"
// @Param        request body appinv.BulkMoveRequest true "Lines"
// @Success      200 {object} dto.Response{data=appinv.BulkMoveResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{data=appinv.BulkMoveResult,error=dto.ErrorInfo}
// @Router       /stock/out [post]
func (h *StockHandler) StockOut(c *gin.Context) {
	h.bulkMove(c, inventory.DirectionOut)
}

func (h *StockHandler) bulkMove(c *gin.Context, direction inventory.Direction) {
	var req appinv.BulkMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.ledgerService.BulkMove(c.Request.Context(), req, direction)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Failed > 0 {
		h.partialFailure(c, result)
		return
	}

	verb := "Stocked in"
	if direction == inventory.DirectionOut {
		verb = "Stocked out"
	}
	h.SuccessWithMessage(c, fmt.Sprintf("%s %d line(s)", verb, result.Applied), result)
}

// partialFailure reports a bulk movement with failed lines as a failure.
// Applied lines stay applied and are counted in the data.
func (h *StockHandler) partialFailure(c *gin.Context, result *appinv.BulkMoveResult) {
	if result.Applied > 0 {
		middleware.KeepSubmission(c)
	}
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodePartialFailure,
		strings.Join(result.Errors, "\n"), middleware.GetRequestID(c))
	resp.Data = result
	c.JSON(http.StatusUnprocessableEntity, resp)
}

// ListMovements godoc
// @Summary      Movement history
// @Description  Newest first. Dates are inclusive whole days (YYYY-MM-DD).
// @Tags         stock
// @Produce      json
// @Param        direction query string false "IN or OUT"
// @Param        user_id query string false "Handler ID"
// @Param        variant_id query string false "Variant ID"
// @Param        start_date query string false "First day"
// @Param        end_date query string false "Last day"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(50)
// @Success      200 {object} dto.Response{data=[]appinv.MovementResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter appinv.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.ledgerService.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// ExportMovements godoc
// @Summary      Export movement history
// @Description  XLSX with date, warehouse, handler, code, item, spec, quantity, usage type
// @Description  and notes columns. Honours the history filters.
// @Tags         stock
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        direction query string false "IN or OUT"
// @Param        user_id query string false "Handler ID"
// @Param        variant_id query string false "Variant ID"
// @Param        start_date query string false "First day"
// @Param        end_date query string false "Last day"
// @Success      200 {file} file
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/movements/export [get]
func (h *StockHandler) ExportMovements(c *gin.Context) {
	var filter appinv.HistoryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	entries, err := h.ledgerService.ExportHistory(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := export.MovementHistory(entries, h.warehouseMarker)
	if err != nil {
		h.HandleError(c, fmt.Errorf("render movement history: %w", err))
		return
	}
	logger.GetGinLogger(c).Info("movement history exported", zap.Int("rows", len(entries)))
	h.attachment(c, export.MovementHistoryFilename, data)
}

// CancelOut godoc
// @Summary      Cancel a stock-out
// @Description  Restores the quantity to the variant and removes the entry from the ledger.
// @Tags         stock
// @Produce      json
// @Param        id path string true "Movement ID"
// @Success      200 {object} dto.Response{data=appinv.CancelOutResult}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /stock/movements/{id}/cancel [post]
func (h *StockHandler) CancelOut(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.ledgerService.CancelOut(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, fmt.Sprintf("Restored %d to %s", result.Restored, result.Variant.Code), result)
}

// UsageStats godoc
// @Summary      Usage statistics
// @Description  Stock-out totals per variant ordered by amount, largest first.
// @Tags         stock
// @Produce      json
// @Param        user_id query string false "Handler ID"
// @Param        variant_id query string false "Variant ID"
// @Param        start_date query string false "First day"
// @Param        end_date query string false "Last day"
// @Success      200 {object} dto.Response{data=appinv.UsageStatsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /stock/usage [get]
func (h *StockHandler) UsageStats(c *gin.Context) {
	var filter appinv.UsageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	stats, err := h.reportService.UsageStats(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ExportUsage godoc
// @Summary      Export usage statistics
// @Tags         stock
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        user_id query string false "Handler ID"
// @Param        variant_id query string false "Variant ID"
// @Param        start_date query string false "First day"
// @Param        end_date query string false "Last day"
// @Success      200 {file} file
// @Security     BearerAuth
// @Router       /stock/usage/export [get]
func (h *StockHandler) ExportUsage(c *gin.Context) {
	var filter appinv.UsageFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	stats, err := h.reportService.UsageStats(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	data, err := export.UsageStatistics(stats)
	if err != nil {
		h.HandleError(c, fmt.Errorf("render usage statistics: %w", err))
		return
	}
	h.attachment(c, export.UsageStatisticsFilename, data)
}

func (h *StockHandler) attachment(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, export.ContentType, data)
}
