// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/taibuivan/platewise/internal/platform/constants"
	"github.com/taibuivan/platewise/pkg/uuid"
)

// ImageArchive keeps a copy of every uploaded image.
type ImageArchive interface {
	// Store saves image under a per-user key and returns that key.
	Store(context context.Context, username string, image Image) (string, error)
}

// objectPutter is the slice of the S3 client the archive uses.
type objectPutter interface {
	PutObject(context context.Context, input *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures an S3-compatible bucket (AWS S3, Cloudflare R2, MinIO).
type S3Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// S3Archive stores images in an S3-compatible bucket.
type S3Archive struct {
	client objectPutter
	bucket string
}

/*
NewS3Archive builds the S3 client from options.

Description: Static credentials are used when both keys are set, otherwise the
default AWS credential chain applies. A custom Endpoint switches to
path-style addressing, which R2 and MinIO expect.

Returns:
  - *S3Archive: Ready-to-use archive
  - error: AWS configuration failures
*/
func NewS3Archive(context context.Context, options S3Options) (*S3Archive, error) {
	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(options.Region),
	}
	if options.AccessKeyID != "" && options.SecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(options.AccessKeyID, options.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(context, loaders...)
	if err != nil {
		return nil, fmt.Errorf("s3_archive_config_failed: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archive{client: client, bucket: options.Bucket}, nil
}

// ArchiveKey returns the object key for an image: uploads/<username>/<uuidv7>-<filename>.
func ArchiveKey(username, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		base = "image"
	}
	return constants.ArchiveKeyPrefix + "/" + keySegment(username) + "/" + uuid.New() + "-" + base
}

// keySegment keeps a username inside its own key folder.
func keySegment(username string) string {
	segment := url.PathEscape(username)
	if segment == "" || segment == "." || segment == ".." {
		return "_"
	}
	return segment
}

// Store implements [ImageArchive].
func (archive *S3Archive) Store(context context.Context, username string, image Image) (string, error) {
	key := ArchiveKey(username, image.Filename)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(archive.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(image.Data),
		ContentLength: aws.Int64(int64(len(image.Data))),
	}
	if image.ContentType != "" {
		input.ContentType = aws.String(image.ContentType)
	}

	if _, err := archive.client.PutObject(context, input); err != nil {
		return "", fmt.Errorf("s3_archive_put_failed: %w", err)
	}
	return key, nil
}
