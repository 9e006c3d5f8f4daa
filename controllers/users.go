package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streeteye-be/services"
)

type UserController struct {
	identity IdentityService
}

func NewUserController(identity IdentityService) *UserController {
	return &UserController{identity: identity}
}

// Upsert creates or updates a profile by email, for clients syncing a
// profile outside the signup flow.
func (u *UserController) Upsert(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		City  string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	user, err := u.identity.UpsertProfile(c.Request.Context(), services.ProfileInput{
		Email: input.Email,
		Name:  input.Name,
		City:  input.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Get looks up a profile by email.
func (u *UserController) Get(c *gin.Context) {
	user, err := u.identity.ByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
