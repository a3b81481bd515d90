package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/identity"
	"github.com/stockledger/backend/internal/domain/shared"
	csvimport "github.com/stockledger/backend/internal/infrastructure/import"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// DefaultMaxUploadSize bounds intake uploads when no limit is configured
const DefaultMaxUploadSize int64 = 10 << 20

// IntakeHandler serves the pending-batch workflow
type IntakeHandler struct {
	BaseHandler
	pendingService *appinv.PendingService
	actor          *identity.User
	maxUploadSize  int64
}

// NewIntakeHandler creates a new IntakeHandler. Committed batches are
// credited to actor.
func NewIntakeHandler(pendingService *appinv.PendingService, actor *identity.User, maxUploadSize int64) *IntakeHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = DefaultMaxUploadSize
	}
	return &IntakeHandler{
		pendingService: pendingService,
		actor:          actor,
		maxUploadSize:  maxUploadSize,
	}
}

// SubmitRows godoc
// @Summary      Submit intake rows
// @Description  Rows of date, supplier, item, spec and quantity. Accepts a JSON body
// @Description  {"rows": [[...]]} or pasted tab-separated text (text/plain). Valid rows are
// @Description  grouped into one pending batch per date and supplier. Any row error rejects
// @Description  the whole submission and the errors are listed in data.errors.
// @Tags         intake
// @Accept       json,plain
// @Produce      json
// @Param        Idempotency-Key header string false "Submission key"
// @Param        request body appinv.SubmitRowsRequest true "Rows"
// @Success      201 {object} dto.Response{data=appinv.SubmitRowsResult}
// @Failure      400 {object} dto.Response{data=appinv.SubmitRowsResult,error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/rows [post]
func (h *IntakeHandler) SubmitRows(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "text/plain") {
		records, err := csvimport.ReadTSV(c.Request.Body)
		if err != nil {
			h.readError(c, err)
			return
		}
		result, err := h.pendingService.SubmitRecords(c.Request.Context(), records)
		h.submitted(c, result, err)
		return
	}

	var req appinv.SubmitRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.pendingService.SubmitRows(c.Request.Context(), cellsToStrings(req.Rows))
	h.submitted(c, result, err)
}

// UploadFile godoc
// @Summary      Upload an intake sheet
// @Description  First sheet of an .xlsx file, or a .csv/.tsv file. A header row is skipped
// @Description  when its quantity cell is not a number.
// @Tags         intake
// @Accept       multipart/form-data
// @Produce      json
// @Param        Idempotency-Key header string false "Submission key"
// @Param        file formData file true "Intake sheet"
// @Success      201 {object} dto.Response{data=appinv.SubmitRowsResult}
// @Failure      400 {object} dto.Response{data=appinv.SubmitRowsResult,error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/upload [post]
func (h *IntakeHandler) UploadFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "File is required")
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge,
			fmt.Sprintf("%s (max %d bytes)", csvimport.ErrFileTooLarge.Error(), h.maxUploadSize))
		return
	}

	records, err := csvimport.ReadUpload(header.Filename, file)
	if err != nil {
		h.readError(c, err)
		return
	}
	result, err := h.pendingService.SubmitRecords(c.Request.Context(), csvimport.DropHeaderRow(records))
	h.submitted(c, result, err)
}

func (h *IntakeHandler) readError(c *gin.Context, err error) {
	if errors.Is(err, csvimport.ErrUnsupportedFormat) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeUnsupportedFile, "Only .xlsx, .csv and .tsv files are accepted")
		return
	}
	h.BadRequest(c, "Could not read rows: "+err.Error())
}

// submitted answers a submission. A rejected submission carries its row
// errors in the data field next to the error.
func (h *IntakeHandler) submitted(c *gin.Context, result *appinv.SubmitRowsResult, err error) {
	if err != nil {
		var domainErr *shared.DomainError
		if result != nil && len(result.Errors) > 0 && errors.As(err, &domainErr) {
			resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, middleware.GetRequestID(c))
			resp.Data = result
			c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewMessageResponse(
		fmt.Sprintf("Created %d pending batch(es)", len(result.Batches)), result))
}

// cellsToStrings flattens JSON cells. Numbers keep their shortest form so
// 20240101 stays a date and 10 stays a quantity.
func cellsToStrings(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				cells[j] = v
			case float64:
				cells[j] = strconv.FormatFloat(v, 'f', -1, 64)
			default:
				cells[j] = fmt.Sprint(v)
			}
		}
		out[i] = cells
	}
	return out
}

// ListBatches godoc
// @Summary      List pending batches
// @Description  Newest first. Status is a comma-separated list; the default is PENDING,DONE.
// @Tags         intake
// @Produce      json
// @Param        status query string false "Statuses"
// @Success      200 {object} dto.Response{data=[]appinv.BatchSummary}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/batches [get]
func (h *IntakeHandler) ListBatches(c *gin.Context) {
	var filter appinv.BatchListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	batches, err := h.pendingService.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

// GetBatchItems godoc
// @Summary      Lines of a batch
// @Tags         intake
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200 {object} dto.Response{data=appinv.BatchItemsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/batches/{id}/items [get]
func (h *IntakeHandler) GetBatchItems(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	batch, err := h.pendingService.GetBatchItems(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// UpdateQuantities godoc
// @Summary      Edit line quantities
// @Description  Every line of the batch must be listed exactly once.
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID"
// @Param        request body appinv.UpdateQuantitiesRequest true "Quantities"
// @Success      200 {object} dto.Response{data=appinv.BatchItemsResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/batches/{id}/quantities [put]
func (h *IntakeHandler) UpdateQuantities(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req appinv.UpdateQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	batch, err := h.pendingService.UpdateQuantities(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// ProcessBatch godoc
// @Summary      Commit a batch
// @Description  Stocks in every line in one transaction and marks the batch DONE. The ids
// @Description  with a positive quantity must match the lines of the batch exactly.
// @Tags         intake
// @Accept       json
// @Produce      json
// @Param        id path string true "Batch ID"
// @Param        Idempotency-Key header string false "Submission key"
// @Param        request body appinv.ProcessBatchRequest true "Confirmed quantities"
// @Success      200 {object} dto.Response{data=appinv.ProcessBatchResult}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/batches/{id}/process [post]
func (h *IntakeHandler) ProcessBatch(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req appinv.ProcessBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.pendingService.ProcessBatch(c.Request.Context(), id, req, h.actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, fmt.Sprintf("Stocked in %d line(s)", result.Applied), result)
}

// CancelBatch godoc
// @Summary      Cancel a batch
// @Tags         intake
// @Produce      json
// @Param        id path string true "Batch ID"
// @Success      200 {object} dto.Response{data=appinv.BatchSummary}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /intake/batches/{id}/cancel [post]
func (h *IntakeHandler) CancelBatch(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	batch, err := h.pendingService.CancelBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}
