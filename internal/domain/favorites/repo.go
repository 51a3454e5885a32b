package favorites

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const collection = "favorites"

type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

func docID(uid, openMatID string) string {
	return uid + "_" + openMatID
}

// Add upserts the association; adding twice leaves a single favorite.
func (r *Repo) Add(ctx context.Context, uid, openMatID string) error {
	f := Favorite{UserID: uid, OpenMatID: openMatID, CreatedAt: time.Now().UTC()}
	_, err := r.fs.Collection(collection).Doc(docID(uid, openMatID)).Set(ctx, f, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}
	return nil
}

// Remove deletes the association; removing an absent favorite is not an
// error.
func (r *Repo) Remove(ctx context.Context, uid, openMatID string) error {
	_, err := r.fs.Collection(collection).Doc(docID(uid, openMatID)).Delete(ctx)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// ListByUser returns the ids of every listing the user favorited.
func (r *Repo) ListByUser(ctx context.Context, uid string) ([]string, error) {
	it := r.fs.Collection(collection).Where("user_id", "==", uid).Documents(ctx)

	out := []string{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list favorites: %w", err)
		}
		var f Favorite
		if err := doc.DataTo(&f); err != nil {
			return nil, err
		}
		out = append(out, f.OpenMatID)
	}
	return out, nil
}
