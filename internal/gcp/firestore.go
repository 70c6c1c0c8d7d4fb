package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
)

// NewFirestoreClient creates a Firestore client for projectID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// UpdateJob sets the given fields on a job document and stamps updatedAt.
func UpdateJob(ctx context.Context, docRef *firestore.DocumentRef, updates ...firestore.Update) error {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	if _, err := docRef.Update(ctx, updates); err != nil {
		return fmt.Errorf("update job %s: %w", docRef.ID, err)
	}
	return nil
}

// UpdateJobStatus moves a job to status, recording errDetails when set.
func UpdateJobStatus(ctx context.Context, docRef *firestore.DocumentRef, status, errDetails string) error {
	updates := []firestore.Update{{Path: "status", Value: status}}
	if errDetails != "" {
		updates = append(updates, firestore.Update{Path: "errorDetails", Value: errDetails})
	}
	return UpdateJob(ctx, docRef, updates...)
}
