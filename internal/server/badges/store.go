// Package badges stores rendered identifier images in S3-compatible object
// storage so the QR endpoint and confirmation emails do not re-render on
// every request.
package badges

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	sc "github.com/regisync/regisync/internal/server/config"
)

// Store is the badge-image capability the engine and HTTP layer depend on.
// Presigning is a local signing operation and succeeds whether or not the
// object exists, so callers must check Exists before handing out a URL.
type Store interface {
	Put(ctx context.Context, participantID string, png []byte) error
	Exists(ctx context.Context, participantID string) (bool, error)
	PresignGet(ctx context.Context, participantID string) (string, error)
}

type S3Store struct {
	config *sc.Config
}

func NewS3Store(config *sc.Config) *S3Store {
	return &S3Store{config: config}
}

func objectKey(participantID string) string {
	return fmt.Sprintf("badges/%s.png", participantID)
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

func (s *S3Store) Put(ctx context.Context, participantID string, png []byte) error {

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.config.S3Bucket
	key := objectKey(participantID)

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return fmt.Errorf("error uploading badge: %w", err)
	}

	return nil
}

func (s *S3Store) Exists(ctx context.Context, participantID string) (bool, error) {

	client, err := s.getClient(ctx)
	if err != nil {
		return false, err
	}

	bucket := s.config.S3Bucket
	key := objectKey(participantID)

	_, err = client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("error checking badge object: %w", err)
	}

	return true, nil
}

func (s *S3Store) PresignGet(ctx context.Context, participantID string) (string, error) {

	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket
	key := objectKey(participantID)

	presignClient := s3.NewPresignClient(client)

	req, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", fmt.Errorf("error presigning badge url: %w", err)
	}

	return req.URL, nil
}
