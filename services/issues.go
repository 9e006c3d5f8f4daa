package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/apex/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streeteye-be/apperr"
	"streeteye-be/config"
	"streeteye-be/models"
)

const issuesCollection = "issues"

type IssueFilter struct {
	Category string
	Status   string
}

type CreateIssueInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Lat         *float64
	Lng         *float64
	Address     string
	ImageURLs   []string
}

// Issues is the issue registry: lifecycle, upvote toggling and
// ownership-gated resolution and deletion of reported issues.
type Issues struct {
	db *config.Database
}

func NewIssues(db *config.Database) *Issues {
	return &Issues{db: db}
}

func (s *Issues) issues() *mongo.Collection {
	return s.db.Collection(issuesCollection)
}

// List returns issues matching the optional filters, newest first.
func (s *Issues) List(ctx context.Context, filter IssueFilter) ([]models.Issue, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	return s.find(ctx, query)
}

// ListMine returns the owner's issues, newest first.
func (s *Issues) ListMine(ctx context.Context, ownerID string) ([]models.Issue, error) {
	if ownerID == "" {
		return nil, apperr.ValidationError("userId is required")
	}
	return s.find(ctx, bson.M{"userId": strings.TrimSpace(ownerID)})
}

func (s *Issues) find(ctx context.Context, query bson.M) ([]models.Issue, error) {
	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.issues().Find(opCtx, query, opts)
	if err != nil {
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Issue not found")
	}
	defer cursor.Close(opCtx)

	issues := []models.Issue{}
	if err := cursor.All(opCtx, &issues); err != nil {
		// Losing the stream mid-cursor means the server is gone just as
		// surely as a failed Find.
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Issue not found")
	}
	return issues, nil
}

// Create persists a new issue with status pending and an empty upvote set.
func (s *Issues) Create(ctx context.Context, in CreateIssueInput) (*models.Issue, error) {
	if in.UserID == "" || in.Title == "" || in.Description == "" || in.Category == "" ||
		in.Lat == nil || in.Lng == nil {
		return nil, apperr.ValidationError("Missing required fields")
	}
	if !models.ValidCategory(in.Category) {
		return nil, apperr.ValidationError("Invalid category")
	}
	if !finite(*in.Lat) || !finite(*in.Lng) {
		return nil, apperr.ValidationError("Location coordinates must be finite numbers")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	issue := models.Issue{
		ID:          primitive.NewObjectID(),
		UserID:      strings.TrimSpace(in.UserID),
		Title:       in.Title,
		Description: in.Description,
		Category:    models.IssueCategory(in.Category),
		Location:    models.GeoPoint{Lat: *in.Lat, Lng: *in.Lng},
		Address:     in.Address,
		Status:      models.Pending,
		ImageURLs:   in.ImageURLs,
		Upvotes:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if issue.ImageURLs == nil {
		issue.ImageURLs = []string{}
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	if _, err := s.issues().InsertOne(opCtx, issue); err != nil {
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Issue not found")
	}

	s.bumpReportsCount(ctx, issue.UserID)

	return &issue, nil
}

// bumpReportsCount increments the owning account's report counter. Best
// effort: a miss here never fails the create.
func (s *Issues) bumpReportsCount(ctx context.Context, ownerID string) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	_, err = s.db.Collection(usersCollection).UpdateOne(
		opCtx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{"reportsCount": 1}},
	)
	if err != nil {
		log.WithError(err).WithField("userId", ownerID).Warn("failed to bump reportsCount")
	}
}

// SetStatus overwrites the lifecycle status unconditionally. This is an
// administrative operation with no ownership check, unlike MarkDone.
func (s *Issues) SetStatus(ctx context.Context, id, status string) (*models.Issue, error) {
	if !models.ValidStatus(status) {
		return nil, apperr.ValidationError("Invalid status")
	}

	oid, err := parseIssueID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	if err := s.issues().FindOneAndUpdate(opCtx, bson.M{"_id": oid}, update, opts).Decode(&issue); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Issue not found")
	}
	return &issue, nil
}

// ToggleUpvote flips the user's membership in the upvote set. The flip is
// a single document update, so concurrent toggles by different users both
// land regardless of interleaving.
func (s *Issues) ToggleUpvote(ctx context.Context, id, userID string) (*models.Issue, error) {
	if userID == "" {
		return nil, apperr.ValidationError("userId is required")
	}

	oid, err := parseIssueID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.Issue
	if err := s.issues().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Issue not found")
	}

	// Membership is compared case-insensitively, but the set keeps the
	// caller's representation, so a pull must target the stored value.
	var update bson.M
	if stored, ok := models.FindMember(current.Upvotes, userID); ok {
		update = bson.M{"$pull": bson.M{"upvotes": stored}}
	} else {
		update = bson.M{"$addToSet": bson.M{"upvotes": strings.TrimSpace(userID)}}
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	updCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var issue models.Issue
	if err := s.issues().FindOneAndUpdate(updCtx, bson.M{"_id": oid}, update, opts).Decode(&issue); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Issue not found")
	}
	return &issue, nil
}

// MarkDone resolves an issue. Owner-only, and idempotent: resolving an
// already resolved issue succeeds.
func (s *Issues) MarkDone(ctx context.Context, id, userID string) (*models.Issue, error) {
	if userID == "" {
		return nil, apperr.ValidationError("userId is required")
	}

	oid, err := parseIssueID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.Issue
	if err := s.issues().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Issue not found")
	}

	if !models.SameID(current.UserID, userID) {
		return nil, apperr.ForbiddenError("Only the owner can mark this issue as done")
	}

	updCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": models.Resolved, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var issue models.Issue
	if err := s.issues().FindOneAndUpdate(updCtx, bson.M{"_id": oid}, update, opts).Decode(&issue); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Issue not found")
	}
	return &issue, nil
}

// Delete permanently removes an issue. Owner-only.
func (s *Issues) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return apperr.ValidationError("userId is required")
	}

	oid, err := parseIssueID(id)
	if err != nil {
		return err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.Issue
	if err := s.issues().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return apperr.FromStorage(err, "Issue not found")
	}

	if !models.SameID(current.UserID, userID) {
		return apperr.ForbiddenError("Only the owner can delete this issue")
	}

	delCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	if _, err := s.issues().DeleteOne(delCtx, bson.M{"_id": oid}); err != nil {
		s.db.MarkDown()
		return apperr.FromStorage(err, "Issue not found")
	}
	return nil
}

func parseIssueID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFoundError("Issue not found")
	}
	return oid, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
