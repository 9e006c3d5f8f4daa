package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"streeteye-be/models"
	"streeteye-be/services"
)

// IdentityService is what the auth and user handlers need from the
// identity layer.
type IdentityService interface {
	Signup(ctx context.Context, in services.SignupInput) (*services.AccountSummary, string, error)
	Login(ctx context.Context, email, password string) (*services.AccountSummary, string, error)
	UpsertProfile(ctx context.Context, in services.ProfileInput) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthController struct {
	identity IdentityService
}

func NewAuthController(identity IdentityService) *AuthController {
	return &AuthController{identity: identity}
}

// Test answers without touching storage, so clients can probe the auth
// area while the store is down.
func (a *AuthController) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Auth endpoint is working!",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *AuthController) Signup(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		City     string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, token, err := a.identity.Signup(c.Request.Context(), services.SignupInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		City:     input.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

func (a *AuthController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, token, err := a.identity.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user, "token": token})
}
