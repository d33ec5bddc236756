package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/apperrors"
	"smartshelf/internal/audit"
	"smartshelf/internal/server/middleware"
	"smartshelf/internal/store"
)

// Helper functions shared by all handlers.

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   message,
	})
}

// respondError maps the apperrors taxonomy onto status codes. Anything
// outside the taxonomy is an unexpected failure and stays opaque.
func respondError(c *gin.Context, err error) {
	var validationErr *apperrors.ValidationError
	var notFoundErr *apperrors.NotFoundError
	var conflictErr *apperrors.ConflictError
	var authErr *apperrors.AuthError
	var upstreamErr *apperrors.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		fail(c, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		fail(c, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		fail(c, http.StatusConflict, conflictErr.Error())
	case errors.As(err, &authErr):
		status := http.StatusForbidden
		if authErr.Missing {
			status = http.StatusUnauthorized
		}
		fail(c, status, authErr.Error())
	case errors.As(err, &upstreamErr):
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   upstreamErr.Message,
			"details": upstreamErr.Detail,
		})
	default:
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}

// actorFrom builds the audit actor from the verified claims and request
// provenance.
func actorFrom(c *gin.Context) audit.Actor {
	actor := audit.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if claims := middleware.Claims(c); claims != nil {
		actor.Email = claims.Email
	}
	return actor
}

func listParamsFrom(c *gin.Context) store.ListParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	return store.ListParams{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "DESC"),
	}
}

type paginationMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

func paginate(total int64, params store.ListParams) paginationMeta {
	page := params.Page
	if page <= 0 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	return paginationMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}
}

func listResponse(c *gin.Context, key string, rows interface{}, total int64, params store.ListParams) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		key:          rows,
		"pagination": paginate(total, params),
	})
}
