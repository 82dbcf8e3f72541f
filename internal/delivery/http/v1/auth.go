package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oponion/oponion-api/internal/services"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

type tokenResponse struct {
	ID      string `json:"id"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type loginRequest struct {
	// Username accepts an email as well.
	Username string `json:"username" binding:"required_without=Email,max=255"`
	Email    string `json:"email" binding:"omitempty,max=255"`
	Password string `json:"password" binding:"required,max=255"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, http.StatusInternalServerError, "internal")
		return
	}

	login := req.Username
	if login == "" {
		login = req.Email
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Login:       login,
		Password:    req.Password,
		Fingerprint: fingerprint,
	})
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrUserPasswordMismatch) {
			h.abort(c, http.StatusUnauthorized, "auth.invalid_credentials")
			return
		}
		h.abortWithError(c, err)
		return
	}

	setAuthCookies(c, result)
	c.JSON(http.StatusOK, tokenResponse{
		ID:      result.UserID,
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
	})
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshToken == "" {
		var req refreshRequest
		if c.Request.ContentLength != 0 {
			_ = c.ShouldBindJSON(&req)
		}
		refreshToken = req.Refresh
	}
	if refreshToken == "" {
		h.logger.Error().Msg("refresh token not provided")
		h.abort(c, http.StatusBadRequest, "request.invalid_body")
		return
	}

	result, ok := h.refresh(c, refreshToken)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		ID:      result.UserID,
		Access:  result.AccessToken,
		Refresh: result.RefreshToken,
	})
}

// refresh rotates the session and sets the new cookies.
// It aborts the request and returns false on failure.
func (h *handlerImpl) refresh(c *gin.Context, refreshToken string) (*services.LoginResult, bool) {
	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, http.StatusInternalServerError, "internal")
		return nil, false
	}

	result, err := h.auth.Refresh(c, services.RefreshParams{
		RefreshToken: refreshToken,
		Fingerprint:  fingerprint,
	})
	if err != nil {
		h.abortWithError(c, err)
		return nil, false
	}

	setAuthCookies(c, result)
	return result, true
}

type registerRequest struct {
	Username  string `json:"username" binding:"max=150"`
	Email     string `json:"email" binding:"omitempty,email,max=255"`
	Password  string `json:"password" binding:"max=255"`
	FirstName string `json:"first_name" binding:"max=150"`
	LastName  string `json:"last_name" binding:"max=150"`
	Phone     string `json:"phone" binding:"max=50"`
	Job       string `json:"job" binding:"max=150"`
	Location  string `json:"location" binding:"max=150"`
	Timezone  string `json:"timezone" binding:"max=64"`
	Languages string `json:"languages" binding:"max=255"`
	Bio       string `json:"bio"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.abortInvalidBody(c, err)
		return
	}
	h.logger.Info().
		Str("username", req.Username).
		Str("email", req.Email).
		Msg("register request")

	fingerprint, err := generateFingerprint(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to generate fingerprint")
		h.abort(c, http.StatusInternalServerError, "internal")
		return
	}

	result, err := h.auth.Register(c, services.RegisterParams{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		Fingerprint: fingerprint,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Phone:       req.Phone,
		Job:         req.Job,
		Location:    req.Location,
		Timezone:    req.Timezone,
		Languages:   req.Languages,
		Bio:         req.Bio,
	})
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	setAuthCookies(c, result)
	c.JSON(http.StatusCreated, registerResponse{
		Message: h.localize(c, "auth.registered"),
		ID:      result.UserID,
	})
}

func (h *handlerImpl) HandleLogout(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	err := h.auth.Logout(c, userID)
	if err != nil {
		h.abortWithError(c, err)
		return
	}

	clearCookie(c, accessTokenCookie)
	clearCookie(c, refreshTokenCookie)

	c.Status(http.StatusNoContent)
}

func generateFingerprint(c *gin.Context) (string, error) {
	fingerprintBytes, err := json.Marshal(map[string]string{
		"client_ip":  c.ClientIP(),
		"user_agent": c.Request.UserAgent(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}
	return string(fingerprintBytes), nil
}

func setAuthCookies(c *gin.Context, result *services.LoginResult) {
	now := time.Now()
	setAccessTokenCookie(c, result.AccessToken, result.AccessTokenExpiresAt.Sub(now))
	setRefreshTokenCookie(c, result.RefreshToken, result.RefreshTokenExpiresAt.Sub(now))
}

func setAccessTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	// httpOnly must be false to allow client-side JavaScript
	// to read the cookie and send it in the Authorization header.
	const secure, httpOnly = false, false
	c.SetCookie(accessTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func setRefreshTokenCookie(c *gin.Context, token string, maxAge time.Duration) {
	const secure, httpOnly = false, true
	c.SetCookie(refreshTokenCookie, token, int(maxAge.Seconds()),
		"/", "", secure, httpOnly)
}

func clearCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1,
		"/", "", false, false)
}
