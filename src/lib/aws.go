package lib

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var s3Client *s3.Client

func AWSGetS3Client() *s3.Client {
	if s3Client != nil {
		return s3Client
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	s3Client = s3.NewFromConfig(cfg)
	return s3Client
}

// S3PresignPhotoURL issues a time-limited download URL for a delivered photo
// object. Uploads themselves are issued elsewhere; this side only reads.
func S3PresignPhotoURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	client := AWSGetS3Client()
	bucket := os.Getenv("S3_PHOTOS_BUCKET")
	presigner := s3.NewPresignClient(client)
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expires))
	if err != nil {
		log.Printf("[S3] Error presigning object %s: %s\n", key, err.Error())
		return "", err
	}
	return req.URL, nil
}
