// Package controllers holds the gin handlers. Every handler builds its
// access.Session from the request (see Authenticate) and hands it to the
// services, which make the permission decisions.
package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/auth"
	"shaaban-furniture-backend/cart"
	"shaaban-furniture-backend/models"
	"shaaban-furniture-backend/services"
	"shaaban-furniture-backend/store"
)

// Controller holds the dependencies shared by all handlers.
type Controller struct {
	Store     store.Store
	Tokens    *auth.TokenIssuer
	Auth      *auth.Service
	Roles     *access.RoleResolver
	Products  *services.ProductService
	Orders    *services.OrderService
	Reviews   *services.ReviewService
	Users     *services.UserService
	Inbox     *services.InboxService
	Stats     *services.StatsService
	Reports   *services.ReportService
	Recs      *services.RecommendationService
	Assistant *ai.Assistant
	Carts     *cart.Registry
	Catalog   models.Catalog
	Env       string
	Logger    *log.Logger
}

func (ctrl *Controller) logf(format string, args ...any) {
	if ctrl.Logger != nil {
		ctrl.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// respondError maps service errors onto status codes in one place.
func (ctrl *Controller) respondError(c *gin.Context, err error) {
	if fields, ok := services.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input", "fields": fields})
		return
	}
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrPermissionDenied):
		ctrl.logf("PERMISSION DENIED %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if ctrl.Env == "production" {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to do that"})
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrNotCancellable),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrSelfRevoke):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctrl.logf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// bind decodes the JSON body, reporting binding failures per field.
func (ctrl *Controller) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		err = services.Validation(err)
		if services.IsValidation(err) {
			ctrl.respondError(c, err)
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
