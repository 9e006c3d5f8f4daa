package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Garbage      IssueCategory = "Garbage"
	Water        IssueCategory = "Water"
	Sewer        IssueCategory = "Sewer"
	Roads        IssueCategory = "Roads"
	Electricity  IssueCategory = "Electricity"
	Streetlights IssueCategory = "Streetlights"
	Traffic      IssueCategory = "Traffic"
	Other        IssueCategory = "Other"
)

func ValidCategory(c string) bool {
	switch IssueCategory(c) {
	case Garbage, Water, Sewer, Roads, Electricity, Streetlights, Traffic, Other:
		return true
	}
	return false
}

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "pending"
	InProgress IssueStatus = "inProgress"
	Resolved   IssueStatus = "resolved"
)

func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Pending, InProgress, Resolved:
		return true
	}
	return false
}

// GeoPoint is the reported location. Both coordinates are required and
// must be finite; geocoding happens client-side.
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue is a civic issue reported by a user. Upvotes holds the canonical
// string ids of accounts that currently upvote the issue, no duplicates.
type Issue struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Category    IssueCategory      `bson:"category" json:"category"`
	Location    GeoPoint           `bson:"location" json:"location"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Status      IssueStatus        `bson:"status" json:"status"`
	ImageURLs   []string           `bson:"imageUrls" json:"imageUrls"`
	Upvotes     []string           `bson:"upvotes" json:"upvotes"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
