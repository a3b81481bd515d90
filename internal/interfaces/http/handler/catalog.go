package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/stockledger/backend/internal/application/catalog"
	appinv "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// CatalogHandler serves the back-office catalog endpoints
type CatalogHandler struct {
	BaseHandler
	catalogService *catalogapp.CatalogService
	userService    *catalogapp.UserService
	reportService  *appinv.ReportService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	catalogService *catalogapp.CatalogService,
	userService *catalogapp.UserService,
	reportService *appinv.ReportService,
) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		userService:    userService,
		reportService:  reportService,
	}
}

// ListCategories godoc
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.CategoryResponse}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, categories)
}

// CreateCategory godoc
// @Summary      Create a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category"
// @Success      201 {object} dto.Response{data=catalogapp.CategoryResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/categories [post]
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// DeleteCategory godoc
// @Summary      Delete a category
// @Description  Items of the category are kept and lose their category.
// @Tags         catalog
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/categories/{id} [delete]
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListItems godoc
// @Summary      List items
// @Tags         catalog
// @Produce      json
// @Param        category_id query string false "Category ID"
// @Param        search query string false "Name contains"
// @Success      200 {object} dto.Response{data=[]catalogapp.ItemResponse}
// @Router       /catalog/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var filter catalogapp.ItemListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	items, err := h.catalogService.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// CreateItem godoc
// @Summary      Create an item
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateItemRequest true "Item"
// @Success      201 {object} dto.Response{data=catalogapp.ItemResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req catalogapp.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	item, err := h.catalogService.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// QuickAddItem godoc
// @Summary      Create an item with several specs
// @Description  Specs is a comma-separated list of labels. Missing specs are created and a
// @Description  variant is registered for every spec the item does not have yet.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.QuickAddRequest true "Quick add"
// @Success      201 {object} dto.Response{data=catalogapp.QuickAddResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/items/quick [post]
func (h *CatalogHandler) QuickAddItem(c *gin.Context) {
	var req catalogapp.QuickAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.catalogService.QuickAddItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListItemVariants godoc
// @Summary      List the variants of an item
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Item ID"
// @Success      200 {object} dto.Response{data=[]appinv.VariantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/items/{id}/variants [get]
func (h *CatalogHandler) ListItemVariants(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	variants, err := h.catalogService.ListItemVariants(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variants)
}

// ListSpecs godoc
// @Summary      List specs
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.SpecResponse}
// @Router       /catalog/specs [get]
func (h *CatalogHandler) ListSpecs(c *gin.Context) {
	specs, err := h.catalogService.ListSpecs(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, specs)
}

// CreateSpec godoc
// @Summary      Create a spec
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateSpecRequest true "Spec"
// @Success      201 {object} dto.Response{data=catalogapp.SpecResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/specs [post]
func (h *CatalogHandler) CreateSpec(c *gin.Context) {
	var req catalogapp.CreateSpecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	spec, err := h.catalogService.CreateSpec(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, spec)
}

// ListVariants godoc
// @Summary      Search inventory status
// @Description  Variants ordered by item name then spec label unless order_by is given.
// @Tags         catalog
// @Produce      json
// @Param        category_id query string false "Category ID"
// @Param        low_stock query bool false "Only variants below their minimum quantity"
// @Param        q query string false "Matches item name, description or spec label"
// @Param        order_by query string false "code, current_quantity, min_quantity, unit_price, updated_at, item_name or spec_label"
// @Param        order_dir query string false "asc or desc" default(desc)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]appinv.VariantResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/variants [get]
func (h *CatalogHandler) ListVariants(c *gin.Context) {
	var filter appinv.StatusFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.ValidationError(c, err)
		return
	}

	page, err := h.reportService.ListStatus(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// RegisterVariant godoc
// @Summary      Register a variant
// @Description  Creates the item x spec combination and assigns its code.
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.RegisterVariantRequest true "Variant"
// @Success      201 {object} dto.Response{data=appinv.VariantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants [post]
func (h *CatalogHandler) RegisterVariant(c *gin.Context) {
	var req catalogapp.RegisterVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	variant, err := h.catalogService.RegisterVariant(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, variant)
}

// UpdateVariant godoc
// @Summary      Update variant thresholds
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        id path string true "Variant ID"
// @Param        request body catalogapp.UpdateVariantRequest true "Thresholds"
// @Success      200 {object} dto.Response{data=appinv.VariantResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/variants/{id} [patch]
func (h *CatalogHandler) UpdateVariant(c *gin.Context) {
	id, ok := h.pathUUID(c, "id")
	if !ok {
		return
	}

	var req catalogapp.UpdateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	variant, err := h.catalogService.UpdateVariant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, variant)
}

// ListUsers godoc
// @Summary      List handlers
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=[]catalogapp.UserResponse}
// @Router       /catalog/users [get]
func (h *CatalogHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// CreateUser godoc
// @Summary      Register a handler
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateUserRequest true "User"
// @Success      201 {object} dto.Response{data=catalogapp.UserResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /catalog/users [post]
func (h *CatalogHandler) CreateUser(c *gin.Context) {
	var req catalogapp.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}
