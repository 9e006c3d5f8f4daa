package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streeteye-be/apperr"
	"streeteye-be/config"
	"streeteye-be/models"
)

const postsCollection = "communityposts"

type CreatePostInput struct {
	UserID   string
	UserName string
	Content  string
	City     string
}

type UpdatePostInput struct {
	UserID  string
	Content string
	City    string
}

// Community is the city-scoped feed: posts, like toggling and
// ownership-gated edit and deletion.
type Community struct {
	db *config.Database
}

func NewCommunity(db *config.Database) *Community {
	return &Community{db: db}
}

func (s *Community) posts() *mongo.Collection {
	return s.db.Collection(postsCollection)
}

// List returns posts newest first, filtered by exact city match unless the
// city is empty or "All".
func (s *Community) List(ctx context.Context, city string) ([]models.CommunityPost, error) {
	query := bson.M{}
	if city != "" && city != "All" {
		query["city"] = city
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.posts().Find(opCtx, query, opts)
	if err != nil {
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Post not found")
	}
	defer cursor.Close(opCtx)

	posts := []models.CommunityPost{}
	if err := cursor.All(opCtx, &posts); err != nil {
		// Same treatment as a failed Find: the stream died under us.
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Post not found")
	}
	return posts, nil
}

// Create persists a post with an empty like set and empty comment list.
// UserName is stored as given; it is a snapshot, not a live join.
func (s *Community) Create(ctx context.Context, in CreatePostInput) (*models.CommunityPost, error) {
	if in.UserID == "" || in.UserName == "" || in.Content == "" {
		return nil, apperr.ValidationError("Missing required fields")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := models.CommunityPost{
		ID:        primitive.NewObjectID(),
		UserID:    strings.TrimSpace(in.UserID),
		UserName:  in.UserName,
		Content:   in.Content,
		City:      in.City,
		Likes:     []string{},
		Comments:  []models.Comment{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	if _, err := s.posts().InsertOne(opCtx, post); err != nil {
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "Post not found")
	}
	return &post, nil
}

// ToggleLike flips the user's membership in the like set, same semantics
// as issue upvotes.
func (s *Community) ToggleLike(ctx context.Context, id, userID string) (*models.CommunityPost, error) {
	if userID == "" {
		return nil, apperr.ValidationError("userId is required")
	}

	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.CommunityPost
	if err := s.posts().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Post not found")
	}

	// Pull the stored representation; the set keeps caller-supplied form.
	var update bson.M
	if stored, ok := models.FindMember(current.Likes, userID); ok {
		update = bson.M{"$pull": bson.M{"likes": stored}}
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": strings.TrimSpace(userID)}}
	}
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}

	updCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.CommunityPost
	if err := s.posts().FindOneAndUpdate(updCtx, bson.M{"_id": oid}, update, opts).Decode(&post); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Post not found")
	}
	return &post, nil
}

// Update overwrites content and, when supplied, city. Owner-only.
func (s *Community) Update(ctx context.Context, id string, in UpdatePostInput) (*models.CommunityPost, error) {
	if in.UserID == "" {
		return nil, apperr.ValidationError("userId is required")
	}
	if in.Content == "" {
		return nil, apperr.ValidationError("content is required")
	}

	oid, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.CommunityPost
	if err := s.posts().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Post not found")
	}

	if !models.SameID(current.UserID, in.UserID) {
		return nil, apperr.ForbiddenError("Only the owner can edit this post")
	}

	set := bson.M{"content": in.Content, "updatedAt": time.Now().UTC()}
	if in.City != "" {
		set["city"] = in.City
	}

	updCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.CommunityPost
	if err := s.posts().FindOneAndUpdate(updCtx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&post); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "Post not found")
	}
	return &post, nil
}

// Delete permanently removes a post. Owner-only.
func (s *Community) Delete(ctx context.Context, id, userID string) error {
	if userID == "" {
		return apperr.ValidationError("userId is required")
	}

	oid, err := parsePostID(id)
	if err != nil {
		return err
	}

	if err := s.db.Ensure(ctx); err != nil {
		return err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var current models.CommunityPost
	if err := s.posts().FindOne(findCtx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return apperr.FromStorage(err, "Post not found")
	}

	if !models.SameID(current.UserID, userID) {
		return apperr.ForbiddenError("Only the owner can delete this post")
	}

	delCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	if _, err := s.posts().DeleteOne(delCtx, bson.M{"_id": oid}); err != nil {
		s.db.MarkDown()
		return apperr.FromStorage(err, "Post not found")
	}
	return nil
}

func parsePostID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFoundError("Post not found")
	}
	return oid, nil
}
