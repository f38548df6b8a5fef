package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
)

// errorKind maps a domain sentinel to a response. Kinds with a fixed message
// wrap upstream failures; their detail goes to the log only.
type errorKind struct {
	err     error
	status  int
	name    string
	message string
}

var errorKinds = []errorKind{
	{domain.ErrNotFound, http.StatusNotFound, "NotFound", ""},
	{domain.ErrAlreadyExists, http.StatusConflict, "AlreadyExists", ""},
	{domain.ErrInvalidArgument, http.StatusBadRequest, "InvalidArgument", ""},
	{domain.ErrTokenExpired, http.StatusBadRequest, "TokenExpired", ""},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "Unauthenticated", ""},
	{domain.ErrForbidden, http.StatusForbidden, "Forbidden", ""},
	{domain.ErrEmptyCart, http.StatusConflict, "EmptyCart", ""},
	{domain.ErrInvalidTransition, http.StatusConflict, "InvalidTransition", ""},
	{domain.ErrPaymentNotConfirmed, http.StatusPaymentRequired, "PaymentNotConfirmed", ""},
	{domain.ErrUploadFailed, http.StatusBadGateway, "UploadFailed", "file upload failed, try again later"},
	{domain.ErrGatewayUnavailable, http.StatusServiceUnavailable, "GatewayUnavailable", "upstream service unavailable, try again later"},
}

// writeError maps domain errors onto status codes. Unknown errors become a
// 500 whose detail is only logged.
func writeError(c *gin.Context, logger *log.Logger, err error) {
	for _, k := range errorKinds {
		if !errors.Is(err, k.err) {
			continue
		}
		msg := err.Error()
		if k.message != "" {
			msg = k.message
			if logger != nil {
				logger.Printf("http: %s %s kind=%s error=%v", c.Request.Method, c.FullPath(), k.name, err)
			}
		}
		c.AbortWithStatusJSON(k.status, gin.H{"Message": msg, "Error": k.name})
		return
	}
	if logger != nil {
		logger.Printf("http: %s %s error=%v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"Message": "internal server error", "Error": "Internal"})
}
