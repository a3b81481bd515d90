package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name     string   `json:"name" binding:"required,max=5"`
	Quantity int      `json:"quantity" binding:"min=1"`
	Lines    []string `json:"lines" binding:"required,min=1"`
}

func bindSample(body string) (*httptest.ResponseRecorder, dto.Response) {
	SetupValidator()
	r := gin.New()
	r.POST("/sample", func(c *gin.Context) {
		var req sampleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/sample", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp dto.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHandleValidationError(t *testing.T) {
	t.Run("field errors use json names", func(t *testing.T) {
		w, resp := bindSample(`{"name":"toolong","quantity":0,"lines":[]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "Must be at most 5 characters", fields["name"])
		assert.Equal(t, "Must be at least 1", fields["quantity"])
		assert.Equal(t, "Must contain at least 1 entries", fields["lines"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w, resp := bindSample(`{"name":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "body", resp.Error.Details[0].Field)
	})

	t.Run("wrong type", func(t *testing.T) {
		w, resp := bindSample(`{"name":"ok","quantity":"three","lines":["a"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "quantity", resp.Error.Details[0].Field)
	})

	t.Run("valid body", func(t *testing.T) {
		w, _ := bindSample(`{"name":"ok","quantity":3,"lines":["a"]}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
