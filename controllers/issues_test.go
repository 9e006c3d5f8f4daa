package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"streeteye-be/apperr"
	"streeteye-be/models"
	"streeteye-be/services"
)

// fakeIssues is an in-memory IssueService with the registry's semantics,
// so handler tests can exercise full request flows.
type fakeIssues struct {
	mu     sync.Mutex
	issues map[string]*models.Issue
}

func newFakeIssues() *fakeIssues {
	return &fakeIssues{issues: map[string]*models.Issue{}}
}

func (f *fakeIssues) List(_ context.Context, filter services.IssueFilter) ([]models.Issue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Issue{}
	for _, issue := range f.issues {
		if filter.Category != "" && string(issue.Category) != filter.Category {
			continue
		}
		if filter.Status != "" && string(issue.Status) != filter.Status {
			continue
		}
		out = append(out, *issue)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeIssues) ListMine(_ context.Context, ownerID string) ([]models.Issue, error) {
	if ownerID == "" {
		return nil, apperr.ValidationError("userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []models.Issue{}
	for _, issue := range f.issues {
		if models.SameID(issue.UserID, ownerID) {
			out = append(out, *issue)
		}
	}
	return out, nil
}

func (f *fakeIssues) Create(_ context.Context, in services.CreateIssueInput) (*models.Issue, error) {
	if in.UserID == "" || in.Title == "" || in.Description == "" || in.Category == "" || in.Lat == nil || in.Lng == nil {
		return nil, apperr.ValidationError("Missing required fields")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperr.ValidationError("Invalid category")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	issue := &models.Issue{
		ID:          primitive.NewObjectID(),
		UserID:      strings.TrimSpace(in.UserID),
		Title:       in.Title,
		Description: in.Description,
		Category:    models.IssueCategory(in.Category),
		Location:    models.GeoPoint{Lat: *in.Lat, Lng: *in.Lng},
		Address:     in.Address,
		Status:      models.Pending,
		ImageURLs:   []string{},
		Upvotes:     []string{},
	}
	f.issues[issue.ID.Hex()] = issue
	return issue, nil
}

func (f *fakeIssues) SetStatus(_ context.Context, id, status string) (*models.Issue, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.ValidationError("Invalid status")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return nil, apperr.NotFoundError("Issue not found")
	}
	issue.Status = models.IssueStatus(status)
	return issue, nil
}

func (f *fakeIssues) ToggleUpvote(_ context.Context, id, userID string) (*models.Issue, error) {
	if userID == "" {
		return nil, apperr.ValidationError("userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return nil, apperr.NotFoundError("Issue not found")
	}
	issue.Upvotes, _ = models.ToggleMember(issue.Upvotes, userID)
	return issue, nil
}

func (f *fakeIssues) MarkDone(_ context.Context, id, userID string) (*models.Issue, error) {
	if userID == "" {
		return nil, apperr.ValidationError("userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return nil, apperr.NotFoundError("Issue not found")
	}
	if !models.SameID(issue.UserID, userID) {
		return nil, apperr.ForbiddenError("Only the owner can mark this issue as done")
	}
	issue.Status = models.Resolved
	return issue, nil
}

func (f *fakeIssues) Delete(_ context.Context, id, userID string) error {
	if userID == "" {
		return apperr.ValidationError("userId is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	issue, ok := f.issues[id]
	if !ok {
		return apperr.NotFoundError("Issue not found")
	}
	if !models.SameID(issue.UserID, userID) {
		return apperr.ForbiddenError("Only the owner can delete this issue")
	}
	delete(f.issues, id)
	return nil
}

func issueRouter(svc IssueService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	ctrl := NewIssueController(svc)
	r.GET("/issues", ctrl.List)
	r.GET("/issues/my", ctrl.ListMine)
	r.POST("/issues", ctrl.Create)
	r.PATCH("/issues/:id/status", ctrl.SetStatus)
	r.POST("/issues/:id/upvote", ctrl.ToggleUpvote)
	r.PATCH("/issues/:id/done", ctrl.MarkDone)
	r.DELETE("/issues/:id", ctrl.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIssueLifecycleScenario(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	// Create: 201, status pending, empty upvote set.
	w := doJSON(t, r, "POST", "/issues", gin.H{
		"userId":      "owner1",
		"title":       "Pothole",
		"description": "Large pothole",
		"category":    "Roads",
		"location":    gin.H{"lat": 31.5, "lng": 74.3},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, models.Pending, created.Status)
	assert.Empty(t, created.Upvotes)

	id := created.ID.Hex()

	// Toggle on.
	w = doJSON(t, r, "POST", "/issues/"+id+"/upvote", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	var issue models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, []string{"u1"}, issue.Upvotes)

	// Toggle off.
	w = doJSON(t, r, "POST", "/issues/"+id+"/upvote", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Empty(t, issue.Upvotes)

	// Mark done by the owner, twice: idempotent.
	for i := 0; i < 2; i++ {
		w = doJSON(t, r, "PATCH", "/issues/"+id+"/done", gin.H{"userId": "owner1"})
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
		assert.Equal(t, models.Resolved, issue.Status)
	}

	// Mark done by someone else: forbidden, record unchanged.
	w = doJSON(t, r, "PATCH", "/issues/"+id+"/done", gin.H{"userId": "intruder"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, models.Resolved, fake.issues[id].Status)

	// Delete by non-owner forbidden, by owner ok.
	w = doJSON(t, r, "DELETE", "/issues/"+id+"?userId=intruder", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, "DELETE", "/issues/"+id+"?userId=owner1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Issue deleted successfully", decodeBody(t, w)["message"])

	w = doJSON(t, r, "DELETE", "/issues/"+id+"?userId=owner1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIssueListFiltering(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	for _, cat := range []string{"Roads", "Roads", "Garbage"} {
		w := doJSON(t, r, "POST", "/issues", gin.H{
			"userId": "u1", "title": "t", "description": "d", "category": cat,
			"location": gin.H{"lat": 1.0, "lng": 2.0},
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, r, "GET", "/issues?category=Roads", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var issues []models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	require.Len(t, issues, 2)
	for _, issue := range issues {
		assert.Equal(t, models.Roads, issue.Category)
	}

	w = doJSON(t, r, "GET", "/issues", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issues))
	assert.Len(t, issues, 3)
}

func TestIssueValidationAndNotFoundCodes(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	w := doJSON(t, r, "POST", "/issues", gin.H{"userId": "u1", "title": "no location"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "GET", "/issues/my", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "PATCH", "/issues/deadbeef/status", gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "PATCH", "/issues/deadbeef/status", gin.H{"status": "inProgress"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, "POST", "/issues/deadbeef/upvote", gin.H{"userId": "u1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetStatusIgnoresOwnership(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	w := doJSON(t, r, "POST", "/issues", gin.H{
		"userId": "owner1", "title": "t", "description": "d", "category": "Water",
		"location": gin.H{"lat": 1.0, "lng": 2.0},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// No userId anywhere: status update is administrative.
	w = doJSON(t, r, "PATCH", "/issues/"+created.ID.Hex()+"/status", gin.H{"status": "resolved"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.Resolved, updated.Status)
}

func TestToggleUpvoteEchoesCallerId(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	w := doJSON(t, r, "POST", "/issues", gin.H{
		"userId": "owner1", "title": "t", "description": "d", "category": "Sewer",
		"location": gin.H{"lat": 1.0, "lng": 2.0},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.ID.Hex()

	// The upvote set echoes the id exactly as the caller supplied it.
	w = doJSON(t, r, "POST", "/issues/"+id+"/upvote", gin.H{"userId": "U1"})
	require.Equal(t, http.StatusOK, w.Code)
	var issue models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Equal(t, []string{"U1"}, issue.Upvotes)

	// A differently-cased form still toggles the same membership off.
	w = doJSON(t, r, "POST", "/issues/"+id+"/upvote", gin.H{"userId": "u1"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &issue))
	assert.Empty(t, issue.Upvotes)
}

func TestConcurrentTogglesByDistinctUsers(t *testing.T) {
	fake := newFakeIssues()
	r := issueRouter(fake)

	w := doJSON(t, r, "POST", "/issues", gin.H{
		"userId": "owner1", "title": "t", "description": "d", "category": "Traffic",
		"location": gin.H{"lat": 1.0, "lng": 2.0},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Issue
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	id := created.ID.Hex()

	var wg sync.WaitGroup
	for _, user := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			w := doJSON(t, r, "POST", "/issues/"+id+"/upvote", gin.H{"userId": user})
			assert.Equal(t, http.StatusOK, w.Code)
		}(user)
	}
	wg.Wait()

	assert.True(t, models.HasMember(fake.issues[id].Upvotes, "u1"))
	assert.True(t, models.HasMember(fake.issues[id].Upvotes, "u2"))
}
