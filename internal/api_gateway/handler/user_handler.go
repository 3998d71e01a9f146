package handler

import (
	"log/slog"
	"net/http"

	"github.com/bookkeeping-ledger/internal/api_gateway/middleware"
	"github.com/bookkeeping-ledger/internal/api_gateway/service"
	"github.com/bookkeeping-ledger/internal/domain/access"
	"github.com/gin-gonic/gin"
)

// UserHandler manages operator accounts
type UserHandler struct {
	userService service.UserService
	logger      *slog.Logger
}

func NewUserHandler(logger *slog.Logger, userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// Create handles POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Create(c.Request.Context(), actorFrom(c), service.NewUser{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     access.Role(req.Role),
	})
	if err != nil {
		respondError(c, h.logger, "Create user", err)
		return
	}
	RespondCreated(c, newUserResponse(u))
}

// List handles GET /users
func (h *UserHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	users, total, err := h.userService.List(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		respondError(c, h.logger, "List users", err)
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, newUserResponse(u))
	}
	RespondWithPaginatedData(c, out, pagination.Page, pagination.PerPage, total)
}

// Delete handles DELETE /users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), actorFrom(c), id); err != nil {
		respondError(c, h.logger, "Delete user", err)
		return
	}
	RespondNoContent(c)
}

// Me handles GET /auth/me and returns the resolved caller
func (h *UserHandler) Me(c *gin.Context) {
	u := middleware.GetUser(c)
	if u == nil {
		RespondWithError(c, http.StatusUnauthorized, middleware.CodeUnauthorized, "Unauthorized")
		return
	}
	RespondOK(c, newUserResponse(u))
}
