package openmat

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const collection = "open_mats"

// Repo is the Firestore gateway for open mat listings.
type Repo struct {
	fs *firestore.Client
}

func NewRepo(fs *firestore.Client) *Repo {
	return &Repo{fs: fs}
}

// List returns every listing ordered by date ascending.
func (r *Repo) List(ctx context.Context) ([]OpenMat, error) {
	it := r.fs.Collection(collection).OrderBy("date", firestore.Asc).Documents(ctx)

	out := []OpenMat{}
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: list open mats: %v", ErrUnavailable, err)
		}
		var m OpenMat
		if err := doc.DataTo(&m); err != nil {
			return nil, err
		}
		m.ID = doc.Ref.ID
		out = append(out, m)
	}
	return out, nil
}

func (r *Repo) Get(ctx context.Context, id string) (*OpenMat, error) {
	doc, err := r.fs.Collection(collection).Doc(id).Get(ctx)
	// Only an actual missing document maps to ErrNotFound; transport and
	// deadline failures stay ErrUnavailable so callers can fall back to
	// the offline mirror instead of reporting a 404.
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("%w: open mat %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get open mat %s: %v", ErrUnavailable, id, err)
	}
	if !doc.Exists() {
		return nil, fmt.Errorf("%w: open mat %s", ErrNotFound, id)
	}
	var m OpenMat
	if err := doc.DataTo(&m); err != nil {
		return nil, err
	}
	m.ID = doc.Ref.ID
	return &m, nil
}

// Create stores a new listing under a server-assigned document ID.
func (r *Repo) Create(ctx context.Context, m OpenMat) (*OpenMat, error) {
	ref := r.fs.Collection(collection).NewDoc()
	if _, err := ref.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("%w: create open mat: %v", ErrUnavailable, err)
	}
	m.ID = ref.ID
	return &m, nil
}
