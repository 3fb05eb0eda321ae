package clients

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/livepeer/clip-api/errors"
)

//go:generate mockgen -source=./source.go -destination=../mocks/clients/source.go

// SourceResolver turns a source file identifier into a URL the engine can fetch
type SourceResolver interface {
	ResolveSourceURL(ctx context.Context, sourceFile string) (string, error)
}

// NewSourceResolver picks a resolver for the configured source location.
// http(s) bases are joined with the file name; s3:// buckets get presigned GET URLs.
func NewSourceResolver(sourceURL *url.URL, s3Region string) (SourceResolver, error) {
	if sourceURL == nil {
		return nil, fmt.Errorf("no source URL configured")
	}
	switch sourceURL.Scheme {
	case "http", "https":
		return BucketURLResolver{Base: sourceURL}, nil
	case "s3":
		client, err := NewS3Client(s3Region, sourceURL.User)
		if err != nil {
			return nil, err
		}
		return NewS3Resolver(client, sourceURL), nil
	}
	return nil, fmt.Errorf("unsupported source URL scheme %q", sourceURL.Scheme)
}

// BucketURLResolver serves sources from a public bucket, e.g. http://storage.googleapis.com/<bucket>
type BucketURLResolver struct {
	Base *url.URL
}

func (r BucketURLResolver) ResolveSourceURL(_ context.Context, sourceFile string) (string, error) {
	if err := checkSourceFile(sourceFile); err != nil {
		return "", err
	}
	u := *r.Base
	u.User = nil
	u.RawQuery = ""
	u.RawPath = ""
	u.Path = path.Join("/", u.Path, sourceFile)
	return u.String(), nil
}

const PresignDuration = 1 * time.Hour

type S3Signer interface {
	PresignS3(bucket, key string) (string, error)
}

type S3Client struct {
	s3 *s3.S3
}

// NewS3Client uses the credentials embedded in the source URL when present, otherwise the
// default AWS credential chain
func NewS3Client(region string, user *url.Userinfo) (*S3Client, error) {
	config := aws.NewConfig().WithRegion(region)
	if user != nil {
		secret, _ := user.Password()
		config = config.WithCredentials(credentials.NewStaticCredentials(user.Username(), secret, ""))
	}
	sess, err := session.NewSession(config)
	if err != nil {
		return nil, fmt.Errorf("error creating AWS session: %w", err)
	}
	return &S3Client{s3: s3.New(sess)}, nil
}

func (c *S3Client) PresignS3(bucket, key string) (string, error) {
	req, _ := c.s3.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return req.Presign(PresignDuration)
}

// S3Resolver issues signed URLs for objects under s3://<bucket>/<prefix>
type S3Resolver struct {
	signer S3Signer
	bucket string
	prefix string
}

func NewS3Resolver(signer S3Signer, bucketURL *url.URL) S3Resolver {
	return S3Resolver{
		signer: signer,
		bucket: bucketURL.Host,
		prefix: strings.Trim(bucketURL.Path, "/"),
	}
}

func (r S3Resolver) ResolveSourceURL(_ context.Context, sourceFile string) (string, error) {
	if err := checkSourceFile(sourceFile); err != nil {
		return "", err
	}
	key := strings.TrimPrefix(path.Join(r.prefix, sourceFile), "/")
	signed, err := r.signer.PresignS3(r.bucket, key)
	if err != nil {
		return "", fmt.Errorf("error presigning s3://%s/%s: %w", r.bucket, key, err)
	}
	return signed, nil
}

func checkSourceFile(sourceFile string) error {
	if sourceFile == "" {
		return errors.NewBadRequestError("empty source file", nil)
	}
	for _, part := range strings.Split(sourceFile, "/") {
		if part == ".." {
			return errors.NewBadRequestError(fmt.Sprintf("source file %q escapes the source location", sourceFile), nil)
		}
	}
	return nil
}
