package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	businessdomain "github.com/greensupply/greensupply/internal/business/domain"
	catalogdomain "github.com/greensupply/greensupply/internal/catalog/domain"
	groupdomain "github.com/greensupply/greensupply/internal/group/domain"
	"github.com/greensupply/greensupply/internal/providers/identity"
	supplierdomain "github.com/greensupply/greensupply/internal/supplier/domain"
	"gorm.io/gorm"
)

var ErrInvalidRequest = errors.New("Invalid request body")

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware converts errors recorded on the gin context into
// JSON responses. Handlers record errors via AbortWithError and never write
// status codes themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var capacityErr *groupdomain.CapacityExceededError
	if errors.As(err, &capacityErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: capacityErr.Error(),
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, identity.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, identity.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "identity provider unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, businessdomain.ErrInvalidAccountType),
		errors.Is(err, businessdomain.ErrMissingBusinessType),
		errors.Is(err, businessdomain.ErrOutsideServiceArea),
		errors.Is(err, businessdomain.ErrSupplierOutsideUS),
		errors.Is(err, businessdomain.ErrNoRegion),
		errors.Is(err, supplierdomain.ErrNotSupplierAccount),
		errors.Is(err, supplierdomain.ErrInvalidUnits),
		errors.Is(err, supplierdomain.ErrInvalidUnitPrice),
		errors.Is(err, supplierdomain.ErrInvalidMinOrderUnits),
		errors.Is(err, groupdomain.ErrInvalidUnits),
		errors.Is(err, groupdomain.ErrNotBusinessAccount),
		errors.Is(err, groupdomain.ErrCreatorNotBusiness),
		errors.Is(err, groupdomain.ErrNoRegion),
		errors.Is(err, groupdomain.ErrCreatorNoRegion),
		errors.Is(err, groupdomain.ErrRegionMismatch),
		errors.Is(err, groupdomain.ErrSupplierRegion),
		errors.Is(err, groupdomain.ErrNotJoinable),
		errors.Is(err, groupdomain.ErrDuplicateCommitment),
		errors.Is(err, groupdomain.ErrSupplierMismatch),
		errors.Is(err, groupdomain.ErrSupplierInactive),
		errors.Is(err, groupdomain.ErrSupplierOutOfStock),
		errors.Is(err, groupdomain.ErrNotSupplierReference),
		errors.Is(err, groupdomain.ErrInsufficientInventory),
		errors.Is(err, groupdomain.ErrNotGroupSupplier),
		errors.Is(err, groupdomain.ErrNoCommittedUnits):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, businessdomain.ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, supplierdomain.ErrNotFound),
		errors.Is(err, supplierdomain.ErrSupplierNotFound),
		errors.Is(err, groupdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}
