package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioStore is an ArtifactStore over a MinIO (or S3-compatible) bucket.
// The client is injected and owned by the caller; the store never reaches
// for process-wide state.
type MinioStore struct {
	client *minio.Client
	bucket string
	policy CollisionPolicy
}

// NewMinioStore creates a MinIO-backed artifact store and ensures the bucket
// exists.
func NewMinioStore(ctx context.Context, client *minio.Client, bucket string, policy CollisionPolicy) (*MinioStore, error) {
	if client == nil {
		return nil, fmt.Errorf("minio artifact store: client is required")
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("minio artifact store: invalid collision policy %q", policy)
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("minio artifact store: check bucket %q: %w", bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio artifact store: create bucket %q: %w", bucket, err)
		}
	}
	return &MinioStore{client: client, bucket: bucket, policy: policy}, nil
}

// Put uploads the artifact under stage/filename, applying the collision
// policy when the object key is already occupied.
func (s *MinioStore) Put(ctx context.Context, stage, filename string, data []byte) (string, error) {
	key := path.Join(stage, path.Base(filename))

	if s.policy != Overwrite {
		occupied, err := s.exists(ctx, key)
		if err != nil {
			return "", err
		}
		if occupied {
			switch s.policy {
			case Reject:
				return "", fmt.Errorf("artifact %s: %w", key, ErrArtifactExists)
			case Rename:
				key, err = s.nextFreeKey(ctx, key)
				if err != nil {
					return "", err
				}
			}
		}
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "audio/wav",
	})
	if err != nil {
		return "", fmt.Errorf("upload artifact %s: %w", key, err)
	}
	return key, nil
}

func (s *MinioStore) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" {
		return false, nil
	}
	return false, fmt.Errorf("stat artifact %s: %w", key, err)
}

func (s *MinioStore) nextFreeKey(ctx context.Context, key string) (string, error) {
	ext := path.Ext(key)
	base := strings.TrimSuffix(key, ext)
	for i := 1; i < 10000; i++ {
		candidate := fmt.Sprintf("%s-%d%s", base, i, ext)
		occupied, err := s.exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !occupied {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("artifact %s: no free rename slot", key)
}
