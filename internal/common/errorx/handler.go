package errorx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/dealerhub/dealerhub/internal/common/cnst"
	"github.com/dealerhub/dealerhub/internal/i18n"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrorHandler renders errors collected on the gin context as JSON responses
type ErrorHandler struct {
	logger *zap.Logger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{logger: logger.Named("errorx")}
}

// Abort records err on the context and stops the handler chain.
// ErrorMiddleware writes the response.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// HandleError converts err and writes the response body
func (h *ErrorHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := Convert(err)
	traceID := ExtractTraceID(c)
	h.logError(c, apiErr, err, traceID)

	msg := apiErr.Message
	if !apiErr.custom {
		if t := i18n.TranslateMessage(c, apiErr.Code, apiErr.TemplateData); t != apiErr.Code {
			msg = t
		}
	}
	body := gin.H{
		"error":   msg,
		"code":    apiErr.Code,
		"traceId": traceID,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.HTTPStatus, body)
}

// Convert maps any error onto an APIError. Unknown errors become INTERNAL_ERROR.
func Convert(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		return ErrValidation.WithDetails(details)
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return ErrBodyTooLarge
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrInvalidBody
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}

	return ErrInternal.Wrap(err)
}

func (h *ErrorHandler) logError(c *gin.Context, apiErr *APIError, original error, traceID string) {
	fields := []zap.Field{
		zap.String("trace_id", traceID),
		zap.String("code", apiErr.Code),
		zap.Int("status", apiErr.HTTPStatus),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.String("client_ip", c.ClientIP()),
	}
	if apiErr.HTTPStatus >= http.StatusInternalServerError {
		h.logger.Error("request failed", append(fields, zap.Error(original))...)
		return
	}
	h.logger.Debug("request rejected", append(fields, zap.String("error", original.Error()))...)
}

// ErrorMiddleware renders the last error added with c.Error once the chain returns
func (h *ErrorHandler) ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		h.HandleError(c, c.Errors.Last().Err)
	}
}

// RecoveryMiddleware turns panics into INTERNAL_ERROR responses
func (h *ErrorHandler) RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				h.logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				if c.Writer.Written() {
					c.Abort()
					return
				}
				h.HandleError(c, ErrInternal)
			}
		}()
		c.Next()
	}
}

// ExtractTraceID returns the request trace id: the active span's trace id when
// tracing is on, then the X-Trace-Id header, then a fresh uuid.
func ExtractTraceID(c *gin.Context) string {
	if traceID := c.GetString(cnst.CtxKeyTraceID); traceID != "" {
		return traceID
	}

	traceID := ""
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	} else if hdr := c.GetHeader(cnst.HeaderTraceID); hdr != "" {
		traceID = hdr
	} else {
		traceID = uuid.NewString()
	}
	c.Set(cnst.CtxKeyTraceID, traceID)
	return traceID
}

var tagNameOnce sync.Once

// UseJSONFieldNames makes validation errors report json field names instead of Go names
func UseJSONFieldNames() {
	tagNameOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}
