package handlers

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/internal/interface/middleware"
	"github.com/oksasatya/go-task-manager/pkg/response"
)

const (
	ProfilePicField   = "profile-pic"
	MaxProfilePicSize = 1_000_000
)

var allowedPicExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req application.NewUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	sess, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, sessionResponse{User: toUserResponse(sess.User), Token: sess.Token}, "user created", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	sess, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, sessionResponse{User: toUserResponse(sess.User), Token: sess.Token}, "login successful", nil)
}

// Logout revokes only the token this request was authenticated with.
func (h *UserHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid, middleware.CurrentToken(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) LogoutAll(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.LogoutAll(c.Request.Context(), uid); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out of all sessions", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	response.Success(c, http.StatusOK, toUserResponse(middleware.CurrentUser(c)), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		badPayload(c, err)
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), fields)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "profile updated", nil)
}

func (h *UserHandler) DeleteProfile(c *gin.Context) {
	u, err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "account deleted", nil)
}

func (h *UserHandler) UploadPicture(c *gin.Context) {
	fh, err := c.FormFile(ProfilePicField)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "please upload an image", gin.H{ProfilePicField: "is required"})
		return
	}
	if fh.Size > MaxProfilePicSize {
		response.Error[any](c, http.StatusBadRequest, "please upload an image", gin.H{ProfilePicField: "must be at most 1000000 bytes"})
		return
	}
	if !allowedPicExts[strings.ToLower(filepath.Ext(fh.Filename))] {
		response.Error[any](c, http.StatusBadRequest, "please upload an image", gin.H{ProfilePicField: "must be a .jpg, .jpeg or .png file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	defer func() { _ = f.Close() }()

	if err := h.Svc.UploadPicture(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), f); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"uploaded": true}, "profile picture uploaded", nil)
}

func (h *UserHandler) GetPicture(c *gin.Context) {
	data, err := h.Svc.GetPicture(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (h *UserHandler) DeletePicture(c *gin.Context) {
	if err := h.Svc.DeletePicture(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "profile picture deleted", nil)
}
