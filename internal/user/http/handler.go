package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/case-admin-backend/internal/auth"
	"github.com/nekogravitycat/case-admin-backend/internal/file"
	filehttp "github.com/nekogravitycat/case-admin-backend/internal/file/http"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/metrics"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/request"
	"github.com/nekogravitycat/case-admin-backend/internal/pkg/response"
	"github.com/nekogravitycat/case-admin-backend/internal/user"
)

const invalidCredentialsMessage = "invalid credentials"

// Options tunes the handler's cookie and upload behaviour.
type Options struct {
	CookieSecure   bool
	MaxUploadBytes int64
}

type UserHandler struct {
	userService user.Service
	jwtManager  *auth.JWTManager
	fileHandler *filehttp.Handler
	opts        Options
}

func NewHandler(userService user.Service, jwtManager *auth.JWTManager, fileHandler *filehttp.Handler, opts Options) *UserHandler {
	return &UserHandler{
		userService: userService,
		jwtManager:  jwtManager,
		fileHandler: fileHandler,
		opts:        opts,
	}
}

func bindError(c *gin.Context, err error) {
	response.Message(c, http.StatusBadRequest, "invalid request: "+err.Error())
}

// Login authenticates a user using username and password.
// On success, it sets the session cookie and also returns the token.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()

	u, err := h.userService.Login(ctx, req.Username, req.Password)
	metrics.ObserveLogin(err)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrInvalidUsername), errors.Is(err, user.ErrInvalidPassword):
			// Do not reveal which half of the pair was wrong.
			response.Message(c, http.StatusUnauthorized, invalidCredentialsMessage)
		default:
			response.Error(c, err)
		}
		return
	}

	token, err := h.jwtManager.GenerateAccessToken(auth.Principal{ID: u.ID, Username: u.Username})
	if err != nil {
		response.Error(c, fmt.Errorf("failed to generate token: %w", err))
		return
	}

	auth.SetSessionCookie(c, token, h.jwtManager.TTL(), h.opts.CookieSecure)

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		User:        NewUserResponse(u),
	})
}

// Logout clears the session cookie. It needs no valid session.
func (h *UserHandler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.opts.CookieSecure)
	c.Status(http.StatusNoContent)
}

// Me retrieves the profile of the currently authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// UpdateMe applies a profile edit to the caller's own record.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.userService.Edit(c.Request.Context(), auth.GetUserID(c), body.toServiceRequest())
	metrics.ObserveMutation("edit", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{User: NewUserResponse(u), Message: "Profile updated"})
}

// GetTheme returns the caller's theme preference.
func (h *UserHandler) GetTheme(c *gin.Context) {
	u, err := h.userService.GetByID(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ThemeResponse{Theme: string(u.Theme)})
}

// PutTheme stores the caller's theme preference.
func (h *UserHandler) PutTheme(c *gin.Context) {
	var body ThemeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	if err := h.userService.SetTheme(c.Request.Context(), auth.GetUserID(c), user.Theme(body.Theme)); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ThemeResponse{Theme: body.Theme})
}

func (h *UserHandler) uploadImage(c *gin.Context, userID string) {
	h.fileHandler.HandleFileUpload(c, filehttp.FileUploadConfig{
		FormFieldName: "image",
		OwnerID:       userID,
		MaxSizeBytes:  h.opts.MaxUploadBytes,
		AllowedTypes:  filehttp.ImageTypes,
		ResizeImage:   true,
		AfterUpload: func(ctx context.Context, fileID string) error {
			return h.userService.SetImage(ctx, userID, file.FileURL(fileID))
		},
	})
}

// UploadMyImage replaces the caller's profile image.
func (h *UserHandler) UploadMyImage(c *gin.Context) {
	h.uploadImage(c, auth.GetUserID(c))
}

// UploadImage replaces the profile image of the user in the path.
func (h *UserHandler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	// Fail before storing anything when the target does not exist.
	if _, err := h.userService.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	h.uploadImage(c, uri.ID)
}

// List returns one page of the user grid.
func (h *UserHandler) List(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query: "+err.Error())
		return
	}

	page, err := h.userService.List(c.Request.Context(), req.GridQuery())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, response.NewPageEnvelope(newUserResponses(page.Users), page.PageIndex, page.TotalCount))
}

// Create adds a new user record.
func (h *UserHandler) Create(c *gin.Context) {
	var body CreateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.userService.Create(c.Request.Context(), body.toServiceRequest())
	metrics.ObserveMutation("create", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, MutationResponse{
		User:    NewUserResponse(u),
		Message: fmt.Sprintf("User %s created", u.DisplayName()),
	})
}

// Get retrieves a specific user by their ID.
func (h *UserHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MeResponse{User: NewUserResponse(u)})
}

// Update applies a profile edit to the user in the path.
func (h *UserHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	var body UpdateUserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.userService.Edit(c.Request.Context(), uri.ID, body.toServiceRequest())
	metrics.ObserveMutation("edit", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{
		User:    NewUserResponse(u),
		Message: fmt.Sprintf("User %s updated", u.DisplayName()),
	})
}

// Delete removes a user record and returns it.
func (h *UserHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	u, err := h.userService.Delete(c.Request.Context(), uri.ID)
	metrics.ObserveMutation("delete", err)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, MutationResponse{
		User:    NewUserResponse(u),
		Message: fmt.Sprintf("User %s deleted", u.DisplayName()),
	})
}

func (h *UserHandler) setActive(c *gin.Context, active bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err)
		return
	}

	err := h.userService.SetActive(c.Request.Context(), uri.ID, active)
	if active {
		metrics.ObserveMutation("activate", err)
	} else {
		metrics.ObserveMutation("deactivate", err)
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Activate marks a user active. Activating an active user succeeds.
func (h *UserHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate marks a user inactive.
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}
