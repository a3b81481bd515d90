package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const submissionKeepKey = "submission_keep"

// KeepSubmission marks a failed response whose request still changed state,
// such as a bulk movement with some applied lines. The guard keeps the key
// claimed so a resubmission cannot apply those lines twice.
func KeepSubmission(c *gin.Context) {
	c.Set(submissionKeepKey, true)
}

// SubmissionGuard rejects a repeated submission key with 409 while the
// first claim is live. Requests without the header pass through. When the
// guarded handler fails (status >= 400) the key is released so the operator
// can fix the input and submit again, unless the handler called
// KeepSubmission. Store errors fail open.
func SubmissionGuard(store shared.SubmissionStore, cfg shared.SubmissionConfig) gin.HandlerFunc {
	if cfg.Header == "" {
		cfg.Header = shared.DefaultSubmissionConfig().Header
	}
	if cfg.TTL <= 0 {
		cfg.TTL = shared.DefaultSubmissionConfig().TTL
	}

	return func(c *gin.Context) {
		if !cfg.Enabled || store == nil {
			c.Next()
			return
		}
		key := c.GetHeader(cfg.Header)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > 255 {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, cfg.Header+" is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		scoped := c.Request.Method + " " + c.FullPath() + " " + key

		claimed, err := store.Claim(ctx, scoped, cfg.TTL)
		if err != nil {
			log.Warn("submission store unavailable, processing anyway",
				zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			log.Info("duplicate submission rejected", zap.String("key", key))
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateSubmission,
				"This submission was already received",
				GetRequestID(c),
			))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest && !c.GetBool(submissionKeepKey) {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := store.Release(releaseCtx, scoped); err != nil {
				log.Warn("failed to release submission key", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
