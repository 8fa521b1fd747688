package models

import "time"

// Message defines a contact-form message in the admin inbox.
type Message struct {
	ID        string    `json:"id" bson:"-" firestore:"-"`
	Name      string    `json:"name" bson:"name" firestore:"name"`
	Email     string    `json:"email" bson:"email" firestore:"email"`
	Message   string    `json:"message" bson:"message" firestore:"message"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
	IsRead    bool      `json:"isRead" bson:"isRead" firestore:"isRead"`
}

// Subscriber defines a newsletter subscription. Keyed by lower-cased email.
type Subscriber struct {
	ID        string    `json:"id" bson:"-" firestore:"-"`
	Email     string    `json:"email" bson:"email" firestore:"email"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" firestore:"createdAt"`
}
