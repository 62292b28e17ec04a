package controllers

import (
	"errors"
	"net/http"
	"time"

	"barberqueue-backend/services"
	"barberqueue-backend/utils"

	"github.com/gin-gonic/gin"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Auth         *services.AuthService
	SecureCookie bool
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	res, err := ac.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetCookie("token", res.Token, maxAge, "/", "", ac.SecureCookie, true)

	c.JSON(http.StatusOK, res)
}

// Me returns the session carried by the verified token.
func (ac *AuthController) Me(c *gin.Context) {
	session, ok := utils.SessionFromContext(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Session not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Logout drops the session cookie. Tokens stay valid until they expire.
func (ac *AuthController) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", ac.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
