package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"usuarios-api/internal/usecase/user"
	"usuarios-api/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// bindInput decodes the request body into a UserInput. It writes the 400 response itself
// and returns false when the body cannot be decoded.
func (h *UserHandler) bindInput(c *gin.Context) (user.UserInput, bool) {
	var in user.UserInput
	if errs := decodeError(c.ShouldBindJSON(&in)); len(errs) > 0 {
		h.logger(c).Warn("invalid request body", zap.Strings("errors", errs))
		Fail(c, http.StatusBadRequest, errs)
		return user.UserInput{}, false
	}
	return in, true
}

// CreateUser handles POST /usuarios
func (h *UserHandler) CreateUser(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{UserInput: in})
	if err != nil {
		h.handleError(c, "create user", err)
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: resp.User})
}

// ListUsers handles GET /usuarios?page=&limit=
func (h *UserHandler) ListUsers(c *gin.Context) {
	// malformed values parse as 0 and fall back to the defaults
	page, _ := strconv.ParseInt(c.Query("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Page: page, Limit: limit})
	if err != nil {
		h.handleError(c, "list users", err)
		return
	}

	c.JSON(http.StatusOK, Response{
		Success:       true,
		Data:          resp.Users,
		TotalUsuarios: &resp.Pagination.Total,
		TotalPaginas:  &resp.Pagination.TotalPages,
		PaginaActual:  &resp.Pagination.Page,
	})
}

// SearchByCity handles GET /usuarios/buscar?ciudad=
func (h *UserHandler) SearchByCity(c *gin.Context) {
	resp, err := h.uc.SearchByCity(c.Request.Context(), user.SearchByCityRequest{City: c.Query("ciudad")})
	if err != nil {
		h.handleError(c, "search users by city", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp.Users})
}

// GetUser handles GET /usuarios/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, "get user", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp.User})
}

// UpdateUser handles PUT /usuarios/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	in, ok := h.bindInput(c)
	if !ok {
		return
	}

	resp, err := h.uc.UpdateUser(c.Request.Context(), user.UpdateUserRequest{ID: c.Param("id"), UserInput: in})
	if err != nil {
		h.handleError(c, "update user", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: resp.User})
}

// DeleteUser handles DELETE /usuarios/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	resp, err := h.uc.DeleteUser(c.Request.Context(), user.DeleteUserRequest{ID: c.Param("id")})
	if err != nil {
		h.handleError(c, "delete user", err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: resp.Message})
}

// handleError converts usecase errors to the envelope and status code.
func (h *UserHandler) handleError(c *gin.Context, op string, err error) {
	status, errValue := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger(c).Error(op+" failed", zap.Error(err))
	} else {
		h.logger(c).Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	}
	Fail(c, status, errValue)
}

func (h *UserHandler) logger(c *gin.Context) *zap.Logger {
	return logger.WithContext(c.Request.Context(), h.log)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health handles GET /health by pinging every dependency.
func Health(service string, deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := make(map[string]string, len(deps))
		status := http.StatusOK
		for name, dep := range deps {
			if err := dep.Ping(c.Request.Context()); err != nil {
				components[name] = "error: " + err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":     state,
			"service":    service,
			"components": components,
		})
	}
}
