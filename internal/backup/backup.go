// ABOUTME: Uploads export files to an S3-compatible bucket, optionally age-encrypted.
// ABOUTME: Object keys are <prefix>/measure-<timestamp>.<ext>[.age].
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"filippo.io/age"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var ErrNoBucket = errors.New("backup bucket not configured")

// Putter is the slice of the S3 client uploads need.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures an Uploader.
type Options struct {
	Bucket       string
	Prefix       string
	Region       string
	Endpoint     string
	PathStyle    bool
	AgeRecipient string
}

// Uploader writes export payloads to a bucket.
type Uploader struct {
	client    Putter
	bucket    string
	prefix    string
	recipient age.Recipient
	now       func() time.Time
}

// New builds an Uploader backed by the default AWS credential chain.
func New(ctx context.Context, opts Options) (*Uploader, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.PathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return NewWithClient(client, opts)
}

// NewWithClient builds an Uploader around an existing client.
func NewWithClient(client Putter, opts Options) (*Uploader, error) {
	if opts.Bucket == "" {
		return nil, ErrNoBucket
	}
	u := &Uploader{
		client: client,
		bucket: opts.Bucket,
		prefix: strings.Trim(opts.Prefix, "/"),
		now:    time.Now,
	}
	if opts.AgeRecipient != "" {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(opts.AgeRecipient))
		if err != nil {
			return nil, fmt.Errorf("parsing age recipient: %w", err)
		}
		u.recipient = r
	}
	return u, nil
}

// Key returns the object key for an export with the given extension.
func (u *Uploader) Key(ext string, at time.Time) string {
	name := fmt.Sprintf("measure-%s.%s", at.UTC().Format("20060102T150405Z"), strings.TrimPrefix(ext, "."))
	if u.recipient != nil {
		name += ".age"
	}
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// Upload stores data under a fresh key and returns that key.
func (u *Uploader) Upload(ctx context.Context, ext, contentType string, data []byte) (string, error) {
	key := u.Key(ext, u.now())
	body := data
	if u.recipient != nil {
		enc, err := Encrypt(data, u.recipient)
		if err != nil {
			return "", err
		}
		body = enc
		contentType = "application/octet-stream"
	}

	in := &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := u.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("uploading %s: %w", key, err)
	}
	return key, nil
}

// Encrypt seals data for recipient.
func Encrypt(data []byte, recipient age.Recipient) ([]byte, error) {
	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, fmt.Errorf("creating encrypted writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("encrypting data: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	return buf.Bytes(), nil
}

// Decrypt opens data sealed by Encrypt.
func Decrypt(data []byte, identity age.Identity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, fmt.Errorf("creating decrypted reader: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decrypting data: %w", err)
	}
	return out, nil
}
