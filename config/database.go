package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB dials MongoDB and pings it.
func ConnectDB(ctx context.Context, uri string, mode string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	if mode == "atlas" {
		log.Println("Successfully connected to MongoDB Atlas")
	} else {
		log.Println("Successfully connected to local MongoDB")
	}

	return client, nil
}

// ConnectFirestore opens a Firestore client using application default credentials.
func ConnectFirestore(ctx context.Context, projectID string) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error connecting to Firestore: %w", err)
	}
	log.Printf("Connected to Firestore project %s", projectID)
	return client, nil
}
