package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"openmat-france/backend/internal/config"
	"openmat-france/backend/internal/firebase"
	"openmat-france/backend/internal/httpjson"

	credentials "cloud.google.com/go/iam/credentials/apiv1"
	credentialspb "cloud.google.com/go/iam/credentials/apiv1/credentialspb"
	"cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// MaxImageBytes is the bucket's per-object limit.
const MaxImageBytes = 5 * 1024 * 1024

// Accepted image types and their object-name extensions.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Uploads struct {
	cfg     config.Config
	clients *firebase.Clients
	iam     *credentials.IamCredentialsClient
}

func NewUploads(cfg config.Config, clients *firebase.Clients) *Uploads {
	// IAM client is optional; only needed for signed URLs.
	iamClient, _ := credentials.NewIamCredentialsClient(context.Background())
	return &Uploads{cfg: cfg, clients: clients, iam: iamClient}
}

// ValidateImage checks the payload against the bucket rules before any
// network write: sniffed content type in the allow-list, size at most
// MaxImageBytes. The type comes from the bytes, not from the client.
func ValidateImage(data []byte) (contentType string, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("empty image")
	}
	if len(data) > MaxImageBytes {
		return "", "", fmt.Errorf("image exceeds the 5 MB limit")
	}
	contentType = http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", "", fmt.Errorf("unsupported image type %s (accepted: jpeg, png, gif, webp)", contentType)
	}
	return contentType, ext, nil
}

// UploadImage accepts a multipart "image" part, validates it, stores it
// in the public bucket and returns the public URL.
func (h *Uploads) UploadImage(w http.ResponseWriter, r *http.Request) {
	if h.cfg.StorageBucket == "" {
		httpjson.Error(w, http.StatusServiceUnavailable, "storage bucket is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1024*1024)
	file, _, err := r.FormFile("image")
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "multipart field 'image' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "failed to read image")
		return
	}
	contentType, ext, err := ValidateImage(data)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	objectPath := "open-mats/" + uuid.NewString() + ext
	obj := h.clients.Storage.Bucket(h.cfg.StorageBucket).Object(objectPath)
	wr := obj.NewWriter(r.Context())
	wr.ContentType = contentType
	if _, err := wr.Write(data); err != nil {
		_ = wr.Close()
		httpjson.Error(w, http.StatusBadGateway, "failed to store image")
		return
	}
	if err := wr.Close(); err != nil {
		httpjson.Error(w, http.StatusBadGateway, "failed to store image")
		return
	}

	httpjson.Write(w, http.StatusCreated, map[string]any{
		"path": objectPath,
		"url":  fmt.Sprintf("https://storage.googleapis.com/%s/%s", h.cfg.StorageBucket, objectPath),
	})
}

type signedURLReq struct {
	ContentType    string `json:"contentType"`
	ExpiresSeconds int64  `json:"expiresSeconds,omitempty"` // default 900
}

type signedURLResp struct {
	URL       string `json:"url"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	ExpiresAt int64  `json:"expiresAt"`
}

// CreateSignedUploadURL hands out a short-lived V4 PUT URL for clients
// that upload directly to the bucket. The content type must still be on
// the image allow-list; the object path is server-chosen.
func (h *Uploads) CreateSignedUploadURL(w http.ResponseWriter, r *http.Request) {
	var req signedURLReq
	if err := httpjson.Read(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid json")
		return
	}
	ext, ok := imageExtensions[req.ContentType]
	if !ok {
		httpjson.Error(w, http.StatusBadRequest, "contentType must be one of: image/jpeg, image/png, image/gif, image/webp")
		return
	}

	objectPath := "open-mats/" + uuid.NewString() + ext
	url, exp, err := h.signedURL(r.Context(), objectPath, req.ContentType, req.ExpiresSeconds)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	httpjson.Write(w, http.StatusOK, signedURLResp{URL: url, Path: objectPath, Method: "PUT", ExpiresAt: exp.Unix()})
}

func (h *Uploads) signedURL(ctx context.Context, objectPath, contentType string, expiresSeconds int64) (string, time.Time, error) {
	if h.cfg.StorageBucket == "" {
		return "", time.Time{}, fmt.Errorf("FIREBASE_STORAGE_BUCKET is not set")
	}
	if h.cfg.SignedURLServiceAccountEmail == "" {
		return "", time.Time{}, fmt.Errorf("SIGNED_URL_SERVICE_ACCOUNT_EMAIL is not set")
	}
	if h.iam == nil {
		return "", time.Time{}, fmt.Errorf("IAM credentials client not available")
	}
	if expiresSeconds <= 0 || expiresSeconds > 3600 {
		expiresSeconds = 900
	}
	exp := time.Now().Add(time.Duration(expiresSeconds) * time.Second)

	opts := &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         "PUT",
		Expires:        exp,
		ContentType:    contentType,
		GoogleAccessID: h.cfg.SignedURLServiceAccountEmail,
		SignBytes: func(b []byte) ([]byte, error) {
			name := fmt.Sprintf("projects/-/serviceAccounts/%s", h.cfg.SignedURLServiceAccountEmail)
			resp, err := h.iam.SignBlob(ctx, &credentialspb.SignBlobRequest{
				Name:    name,
				Payload: b,
			})
			if err != nil {
				return nil, err
			}
			return resp.SignedBlob, nil
		},
	}

	url, err := storage.SignedURL(h.cfg.StorageBucket, objectPath, opts)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign url (check service account + permissions): %v", err)
	}
	return url, exp, nil
}
