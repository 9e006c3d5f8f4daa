package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"streeteye-be/models"
	"streeteye-be/services"
)

// CommunityService is what the feed handlers need from the board.
type CommunityService interface {
	List(ctx context.Context, city string) ([]models.CommunityPost, error)
	Create(ctx context.Context, in services.CreatePostInput) (*models.CommunityPost, error)
	ToggleLike(ctx context.Context, id, userID string) (*models.CommunityPost, error)
	Update(ctx context.Context, id string, in services.UpdatePostInput) (*models.CommunityPost, error)
	Delete(ctx context.Context, id, userID string) error
}

type CommunityController struct {
	community CommunityService
}

func NewCommunityController(community CommunityService) *CommunityController {
	return &CommunityController{community: community}
}

func (b *CommunityController) List(c *gin.Context) {
	posts, err := b.community.List(c.Request.Context(), c.Query("city"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

func (b *CommunityController) Create(c *gin.Context) {
	var input struct {
		UserID   string `json:"userId"`
		UserName string `json:"userName"`
		Content  string `json:"content"`
		City     string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	post, err := b.community.Create(c.Request.Context(), services.CreatePostInput{
		UserID:   input.UserID,
		UserName: input.UserName,
		Content:  input.Content,
		City:     input.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

func (b *CommunityController) ToggleLike(c *gin.Context) {
	var input struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	post, err := b.community.ToggleLike(c.Request.Context(), c.Param("id"), input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (b *CommunityController) Update(c *gin.Context) {
	var input struct {
		UserID  string `json:"userId"`
		Content string `json:"content"`
		City    string `json:"city"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	post, err := b.community.Update(c.Request.Context(), c.Param("id"), services.UpdatePostInput{
		UserID:  input.UserID,
		Content: input.Content,
		City:    input.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (b *CommunityController) Delete(c *gin.Context) {
	if err := b.community.Delete(c.Request.Context(), c.Param("id"), c.Query("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
