package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"streeteye-be/models"
	"streeteye-be/services"
)

// IssueService is what the issue handlers need from the registry.
type IssueService interface {
	List(ctx context.Context, filter services.IssueFilter) ([]models.Issue, error)
	ListMine(ctx context.Context, ownerID string) ([]models.Issue, error)
	Create(ctx context.Context, in services.CreateIssueInput) (*models.Issue, error)
	SetStatus(ctx context.Context, id, status string) (*models.Issue, error)
	ToggleUpvote(ctx context.Context, id, userID string) (*models.Issue, error)
	MarkDone(ctx context.Context, id, userID string) (*models.Issue, error)
	Delete(ctx context.Context, id, userID string) error
}

type IssueController struct {
	issues IssueService
}

func NewIssueController(issues IssueService) *IssueController {
	return &IssueController{issues: issues}
}

func (i *IssueController) List(c *gin.Context) {
	issues, err := i.issues.List(c.Request.Context(), services.IssueFilter{
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (i *IssueController) ListMine(c *gin.Context) {
	issues, err := i.issues.ListMine(c.Request.Context(), c.Query("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issues)
}

func (i *IssueController) Create(c *gin.Context) {
	var input struct {
		UserID      string `json:"userId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Location    struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		} `json:"location"`
		Address   string   `json:"address"`
		ImageURLs []string `json:"imageUrls"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	issue, err := i.issues.Create(c.Request.Context(), services.CreateIssueInput{
		UserID:      input.UserID,
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Lat:         input.Location.Lat,
		Lng:         input.Location.Lng,
		Address:     input.Address,
		ImageURLs:   input.ImageURLs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

func (i *IssueController) SetStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	issue, err := i.issues.SetStatus(c.Request.Context(), c.Param("id"), input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (i *IssueController) ToggleUpvote(c *gin.Context) {
	var input struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	issue, err := i.issues.ToggleUpvote(c.Request.Context(), c.Param("id"), input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (i *IssueController) MarkDone(c *gin.Context) {
	var input struct {
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	issue, err := i.issues.MarkDone(c.Request.Context(), c.Param("id"), input.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, issue)
}

func (i *IssueController) Delete(c *gin.Context) {
	if err := i.issues.Delete(c.Request.Context(), c.Param("id"), c.Query("userId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}
