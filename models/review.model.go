package models

import "time"

// ReviewStatus is the moderation state of a submitted review.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// PrivateReview is a submission waiting in the moderation collection.
type PrivateReview struct {
	ID        string       `json:"id" bson:"-" firestore:"-"`
	UserID    string       `json:"userId" bson:"userId" firestore:"userId"`
	Name      string       `json:"name" bson:"name" firestore:"name"`
	Rating    int          `json:"rating" bson:"rating" firestore:"rating"`
	Message   string       `json:"message" bson:"message" firestore:"message"`
	Status    ReviewStatus `json:"status" bson:"status" firestore:"status"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}

// PublicReview is the approved copy readable by everyone. It shares the private id.
type PublicReview struct {
	ID         string    `json:"id" bson:"-" firestore:"-"`
	Name       string    `json:"name" bson:"name" firestore:"name"`
	Rating     int       `json:"rating" bson:"rating" firestore:"rating"`
	Message    string    `json:"message" bson:"message" firestore:"message"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	ApprovedAt time.Time `json:"approvedAt" bson:"approvedAt" firestore:"approvedAt"`
}
