// Package services holds the storage-backed service layer: identity,
// the issue registry and the community board. Services return typed
// apperr failures; controllers translate them to HTTP exactly once.
package services

import (
	"context"
	"time"

	"github.com/apex/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streeteye-be/apperr"
	"streeteye-be/config"
	"streeteye-be/models"
	"streeteye-be/utils"
)

const usersCollection = "users"

// AccountSummary is the public account shape returned by auth endpoints.
type AccountSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city,omitempty"`
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	City     string
}

type ProfileInput struct {
	Email string
	Name  string
	City  string
}

// Identity creates accounts, verifies credentials and issues session tokens.
type Identity struct {
	db     *config.Database
	secret string
}

func NewIdentity(db *config.Database, secret string) *Identity {
	return &Identity{db: db, secret: secret}
}

func (s *Identity) users() *mongo.Collection {
	return s.db.Collection(usersCollection)
}

// Signup registers a new account. Email conflicts are checked on the
// stored value exactly, case-sensitive.
func (s *Identity) Signup(ctx context.Context, in SignupInput) (*AccountSummary, string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", apperr.ValidationError("Name, email and password are required")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, "", err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	count, err := s.users().CountDocuments(findCtx, bson.M{"email": in.Email})
	if err != nil {
		s.db.MarkDown()
		return nil, "", apperr.FromStorage(err, "User not found")
	}
	if count > 0 {
		return nil, "", apperr.ConflictError("Email already in use")
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      in.Name,
		Email:     in.Email,
		City:      in.City,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "Server error", err)
	}

	insertCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	if _, err := s.users().InsertOne(insertCtx, user); err != nil {
		s.db.MarkDown()
		return nil, "", apperr.FromStorage(err, "User not found")
	}

	token, err := utils.GenerateToken(s.secret, user.ID.Hex(), user.Email)
	if err != nil {
		// The account is saved but unusable without a token, which would
		// leave a saved-without-token state; undo the write.
		delCtx, cancelDel := s.db.OpContext(context.Background())
		defer cancelDel()
		if _, delErr := s.users().DeleteOne(delCtx, bson.M{"_id": user.ID}); delErr != nil {
			log.WithError(delErr).WithField("userId", user.ID.Hex()).Error("failed to roll back account after token error")
		}
		return nil, "", apperr.Wrap(apperr.Internal, "Server error", err)
	}

	return summarize(&user), token, nil
}

// Login verifies credentials. The failure message never distinguishes an
// unknown email from a wrong password.
func (s *Identity) Login(ctx context.Context, email, password string) (*AccountSummary, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.ValidationError("Email and password are required")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, "", err
	}

	findCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var user models.User
	err := s.users().FindOne(findCtx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, "", apperr.CredentialsError()
	}
	if err != nil {
		s.db.MarkDown()
		return nil, "", apperr.FromStorage(err, "User not found")
	}

	if !user.ComparePassword(password) {
		return nil, "", apperr.CredentialsError()
	}

	token, err := utils.GenerateToken(s.secret, user.ID.Hex(), user.Email)
	if err != nil {
		return nil, "", apperr.Wrap(apperr.Internal, "Server error", err)
	}

	return summarize(&user), token, nil
}

// UpsertProfile creates or updates an account by email, for clients that
// sync a profile without going through signup.
func (s *Identity) UpsertProfile(ctx context.Context, in ProfileInput) (*models.User, error) {
	if in.Email == "" || in.Name == "" {
		return nil, apperr.ValidationError("name and email are required")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{"name": in.Name, "city": in.City, "updatedAt": now},
		"$setOnInsert": bson.M{
			"email":        in.Email,
			"reportsCount": 0,
			"createdAt":    now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var user models.User
	if err := s.users().FindOneAndUpdate(opCtx, bson.M{"email": in.Email}, update, opts).Decode(&user); err != nil {
		s.db.MarkDown()
		return nil, apperr.FromStorage(err, "User not found")
	}
	return &user, nil
}

// ByEmail looks up an account by its exact stored email.
func (s *Identity) ByEmail(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, apperr.ValidationError("email is required")
	}

	if err := s.db.Ensure(ctx); err != nil {
		return nil, err
	}

	opCtx, cancel := s.db.OpContext(ctx)
	defer cancel()

	var user models.User
	if err := s.users().FindOne(opCtx, bson.M{"email": email}).Decode(&user); err != nil {
		if err != mongo.ErrNoDocuments {
			s.db.MarkDown()
		}
		return nil, apperr.FromStorage(err, "User not found")
	}
	return &user, nil
}

func summarize(u *models.User) *AccountSummary {
	return &AccountSummary{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		City:  u.City,
	}
}
