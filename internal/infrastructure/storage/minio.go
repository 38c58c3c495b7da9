package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"editflow-backend/internal/config"
	"editflow-backend/internal/domains/project/service"
	"editflow-backend/pkg/logger"
)

// MediaStore keeps every project's media under its own prefix in one bucket:
// projects/<publicId>/raw.mp4, projects/<publicId>/v1_cut.mp4, ...
type MediaStore struct {
	client *minio.Client
	bucket string
}

// NewMediaStore connects to MinIO and ensures the bucket exists.
func NewMediaStore(cfg config.MinIOConfig) (*MediaStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return &MediaStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

var _ service.ObjectStore = (*MediaStore)(nil)

// CreateFolder normalizes a prefix and writes its zero-byte marker so the
// folder shows up in listings before any media lands in it.
func (s *MediaStore) CreateFolder(ctx context.Context, name string) (string, error) {
	prefix := strings.TrimSuffix(name, "/") + "/"

	_, err := s.client.PutObject(ctx, s.bucket, prefix, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", prefix, err)
	}
	return prefix, nil
}

// UploadBytes uploads a file under the given folder prefix.
func (s *MediaStore) UploadBytes(ctx context.Context, folder, name string, data []byte, contentType string) (*service.StoredFile, error) {
	key := folder + name

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return &service.StoredFile{
		Key: key,
		URL: fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucket, key),
	}, nil
}

// GrantAccess opens read access on a project's prefix. MinIO has no
// per-identity object grants, so the grant is a prefix-scoped read statement
// in the bucket policy; the principal email is kept for the audit log only.
func (s *MediaStore) GrantAccess(ctx context.Context, folder, principalEmail string) error {
	policy, err := s.client.GetBucketPolicy(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to read bucket policy: %w", err)
	}

	doc := bucketPolicy{Version: "2012-10-17"}
	if policy != "" {
		if err := json.Unmarshal([]byte(policy), &doc); err != nil {
			return fmt.Errorf("failed to parse bucket policy: %w", err)
		}
	}

	resource := fmt.Sprintf("arn:aws:s3:::%s/%s*", s.bucket, folder)
	for _, stmt := range doc.Statement {
		for _, r := range stmt.Resource {
			if r == resource {
				return nil // already granted
			}
		}
	}

	doc.Statement = append(doc.Statement, policyStatement{
		Effect:    "Allow",
		Principal: map[string]interface{}{"AWS": []string{"*"}},
		Action:    []string{"s3:GetObject"},
		Resource:  []string{resource},
	})

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal bucket policy: %w", err)
	}
	if err := s.client.SetBucketPolicy(ctx, s.bucket, string(updated)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}

	logger.Info("Granted read access on media prefix", map[string]interface{}{
		"prefix":    folder,
		"principal": principalEmail,
	})
	return nil
}

// ListFiles lists the objects under a folder prefix, skipping the marker.
func (s *MediaStore) ListFiles(ctx context.Context, folder string) ([]service.StoredFile, error) {
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    folder,
		Recursive: true,
	})

	var files []service.StoredFile
	for object := range objects {
		if object.Err != nil {
			return nil, fmt.Errorf("error listing objects: %w", object.Err)
		}
		if object.Key == folder {
			continue
		}
		files = append(files, service.StoredFile{
			Key: object.Key,
			URL: fmt.Sprintf("http://%s/%s/%s", s.client.EndpointURL().Host, s.bucket, object.Key),
		})
	}
	return files, nil
}

type bucketPolicy struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

type policyStatement struct {
	Effect    string                 `json:"Effect"`
	Principal map[string]interface{} `json:"Principal"`
	Action    []string               `json:"Action"`
	Resource  []string               `json:"Resource"`
}
