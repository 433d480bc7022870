package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"github.com/complysense/complysense/internal/config"
	ierr "github.com/complysense/complysense/internal/errors"
	"github.com/complysense/complysense/internal/logger"
)

const (
	defaultPresignExpiryDuration = 30 * time.Minute
	maxPutRetries                = 3
)

var (
	validDocumentTypes = []DocumentType{DocumentTypeUpload, DocumentTypeReport}
)

// Service archives uploads and generated reports. NewService returns a nil
// Service when archiving is disabled and callers must check for it.
type Service interface {
	UploadDocument(ctx context.Context, document *Document) error
	GetPresignedUrl(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) (string, error)
	GetDocument(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) ([]byte, error)
	Exists(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) (bool, error)
}

type s3ServiceImpl struct {
	client *s3.Client
	config *config.S3Config
	logger *logger.Logger
}

func NewService(cfg *config.Configuration, logger *logger.Logger) (Service, error) {
	if !cfg.S3.Enabled {
		return nil, nil
	}

	awsCfg, err := config.LoadAwsConfig(context.Background(), cfg.S3.Region)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to load aws config").
			Mark(ierr.ErrStorage)
	}

	return &s3ServiceImpl{
		config: &cfg.S3,
		client: s3.NewFromConfig(awsCfg),
		logger: logger,
	}, nil
}

func (s *s3ServiceImpl) getObjectKey(id string, docType DocumentType, docKind DocumentKind) (string, error) {
	switch docType {
	case DocumentTypeUpload, DocumentTypeReport:
	default:
		return "", ierr.NewErrorf("invalid doc type: %s", docType).
			WithHintf("valid doc types are: %v", validDocumentTypes).
			Mark(ierr.ErrSystem)
	}

	key := fmt.Sprintf("%s/%s.%s", docType, id, docKind)
	if s.config.KeyPrefix != "" {
		key = fmt.Sprintf("%s/%s", s.config.KeyPrefix, key)
	}
	return key, nil
}

func (s *s3ServiceImpl) getContentType(docKind DocumentKind) string {
	switch docKind {
	case DocumentKindJSON:
		return "application/json"
	case DocumentKindCSV:
		return "text/csv"
	case DocumentKindText:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

// Exists implements Service.
func (s *s3ServiceImpl) Exists(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) (bool, error) {
	key, err := s.getObjectKey(id, docType, docKind)
	if err != nil {
		return false, err
	}

	_, err = s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})

	if err != nil {
		var nsk *s3types.NoSuchKey
		var nske *s3types.NotFound
		if errors.As(err, &nsk) || errors.As(err, &nske) {
			return false, nil
		}
		return false, ierr.WithError(err).
			WithHint("failed to check if document exists").
			Mark(ierr.ErrStorage)
	}

	return true, nil
}

// GetPresignedUrl implements Service.
func (s *s3ServiceImpl) GetPresignedUrl(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) (string, error) {
	key, err := s.getObjectKey(id, docType, docKind)
	if err != nil {
		return "", err
	}

	duration, err := time.ParseDuration(s.config.PresignExpiryDuration)
	if err != nil {
		duration = defaultPresignExpiryDuration
	}

	presigner := s3.NewPresignClient(s.client)
	result, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(duration))
	if err != nil {
		return "", ierr.WithError(err).WithHint("failed to get presigned url").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrStorage)
	}

	return result.URL, nil
}

// UploadDocument implements Service. Puts are retried with exponential backoff.
func (s *s3ServiceImpl) UploadDocument(ctx context.Context, document *Document) error {
	key, err := s.getObjectKey(document.ID, document.Type, document.Kind)
	if err != nil {
		return err
	}

	put := func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.config.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(document.Data),
			ContentType: aws.String(s.getContentType(document.Kind)),
		})
		return err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxPutRetries),
		ctx,
	)
	notify := func(err error, wait time.Duration) {
		s.logger.Warnw("retrying document upload",
			"key", key,
			"wait", wait.String(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(put, policy, notify); err != nil {
		return ierr.WithError(err).WithHint("failed to upload document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrStorage)
	}

	return nil
}

// GetDocument implements Service.
func (s *s3ServiceImpl) GetDocument(ctx context.Context, id string, docType DocumentType, docKind DocumentKind) ([]byte, error) {
	key, err := s.getObjectKey(id, docType, docKind)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, ierr.WithError(err).WithHint("failed to get document").
			WithMessagef("bucket:%s, key:%s", s.config.Bucket, key).
			Mark(ierr.ErrStorage)
	}

	defer result.Body.Close()

	return io.ReadAll(result.Body)
}
