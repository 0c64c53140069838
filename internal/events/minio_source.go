package events

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/notification"
	"go.uber.org/zap"

	"github.com/BrunoXDR/project-manager-v2/internal/storage"
)

const objectCreatedEvent = "s3:ObjectCreated:*"

type UploadEvent struct {
	ProjectID  string
	DocumentID string
	Filename   string
	ObjectKey  string
	EventName  string
}

type UploadEventSource interface {
	Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error
}

type MinioUploadEventSource struct {
	client *minio.Client
	bucket string
	prefix string
	suffix string
	logger *zap.Logger
}

func NewMinioUploadEventSource(client *minio.Client, bucket string, prefix string, suffix string, logger *zap.Logger) *MinioUploadEventSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MinioUploadEventSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
		suffix: suffix,
		logger: logger,
	}
}

// Run blocks until ctx is cancelled or handler fails. Objects outside the
// document key layout are skipped.
func (s *MinioUploadEventSource) Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error {
	notificationCh := s.client.ListenBucketNotification(ctx, s.bucket, s.prefix, s.suffix, []string{objectCreatedEvent})
	for {
		select {
		case <-ctx.Done():
			return nil
		case info, ok := <-notificationCh:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream closed")
			}
			if info.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream error: %w", info.Err)
			}
			for _, record := range info.Records {
				event, err := toUploadEvent(record)
				if err != nil {
					s.logger.Warn("skipping object", zap.String("key", record.S3.Object.Key), zap.Error(err))
					continue
				}
				if err := handler(ctx, event); err != nil {
					return err
				}
			}
		}
	}
}

func toUploadEvent(record notification.Event) (UploadEvent, error) {
	objectKey, err := decodeObjectKey(record.S3.Object.Key)
	if err != nil {
		return UploadEvent{}, err
	}
	ref, err := storage.ParseDocumentObjectKey(objectKey)
	if err != nil {
		return UploadEvent{}, err
	}
	return UploadEvent{
		ProjectID:  ref.ProjectID,
		DocumentID: ref.DocumentID,
		Filename:   ref.Filename,
		ObjectKey:  objectKey,
		EventName:  record.EventName,
	}, nil
}

func decodeObjectKey(encoded string) (string, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", err
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return decoded, nil
}
