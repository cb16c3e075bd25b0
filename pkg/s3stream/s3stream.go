// Package s3stream reads and writes varint streams stored as S3 objects.
package s3stream

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cockroachdb/errors"
)

var (
	// ErrNotFound marks errors returned for a missing object.
	ErrNotFound = errors.New("s3stream: object not found")

	// ErrBadURI is returned by ParseURI for malformed object URIs.
	ErrBadURI = errors.New("s3stream: malformed object uri")

	// ErrFlushed is returned when writing to a Sink after Flush.
	ErrFlushed = errors.New("s3stream: sink already flushed")
)

// ContentType is set on uploaded objects.
const ContentType = "application/octet-stream"

// API is the subset of the S3 client used by this package.
// *s3.Client satisfies it.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ API = (*s3.Client)(nil)

// Options configures NewClient.
type Options struct {
	Region       string
	Endpoint     string
	UsePathStyle bool

	// Static credentials. When AccessKeyID is empty the client signs
	// requests anonymously.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// NewClient builds an S3 client from explicit options.
func NewClient(opts Options) *s3.Client {
	o := s3.Options{
		Region:       opts.Region,
		UsePathStyle: opts.UsePathStyle,
	}
	if opts.Endpoint != "" {
		o.BaseEndpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKeyID != "" {
		creds := aws.Credentials{
			AccessKeyID:     opts.AccessKeyID,
			SecretAccessKey: opts.SecretAccessKey,
			SessionToken:    opts.SessionToken,
			Source:          "s3stream.Options",
		}
		o.Credentials = aws.NewCredentialsCache(aws.CredentialsProviderFunc(
			func(context.Context) (aws.Credentials, error) { return creds, nil },
		))
	} else {
		o.Credentials = aws.AnonymousCredentials{}
	}
	return s3.New(o)
}

// ParseURI splits an "s3://bucket/key" URI.
func ParseURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", errors.Wrapf(ErrBadURI, "%q: missing s3:// scheme", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", errors.Wrapf(ErrBadURI, "%q: want s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// Object is a buffered reader over an object body.
type Object struct {
	Bucket string
	Key    string
	Size   int64

	body io.ReadCloser
	r    *bufio.Reader
}

// Open starts downloading bucket/key. The caller must Close the
// returned Object.
func Open(ctx context.Context, api API, bucket, key string) (*Object, error) {
	out, err := api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			err = errors.Mark(err, ErrNotFound)
		}
		return nil, errors.Wrapf(err, "get s3://%s/%s", bucket, key)
	}
	return &Object{
		Bucket: bucket,
		Key:    key,
		Size:   aws.ToInt64(out.ContentLength),
		body:   out.Body,
		r:      bufio.NewReader(out.Body),
	}, nil
}

func (o *Object) Read(p []byte) (int, error) {
	return o.r.Read(p)
}

func (o *Object) ReadByte() (byte, error) {
	return o.r.ReadByte()
}

// Close releases the object body.
func (o *Object) Close() error {
	return o.body.Close()
}

// Sink collects writes in memory and uploads them as one object on
// Flush.
type Sink struct {
	api     API
	bucket  string
	key     string
	buf     bytes.Buffer
	flushed bool
}

// NewSink returns a Sink that uploads to bucket/key.
func NewSink(api API, bucket, key string) *Sink {
	return &Sink{api: api, bucket: bucket, key: key}
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.flushed {
		return 0, ErrFlushed
	}
	return s.buf.Write(p)
}

// WriteContext implements varint.ContextWriter. Writes only touch the
// buffer, so ctx is checked and otherwise unused.
func (s *Sink) WriteContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.Write(p)
}

// Len reports the number of buffered bytes.
func (s *Sink) Len() int {
	return s.buf.Len()
}

// Flush uploads the buffered bytes. A Sink can be flushed once; a
// failed upload may be retried.
func (s *Sink) Flush(ctx context.Context) error {
	if s.flushed {
		return ErrFlushed
	}
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(s.buf.Bytes()),
		ContentLength: aws.Int64(int64(s.buf.Len())),
		ContentType:   aws.String(ContentType),
	})
	if err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", s.bucket, s.key)
	}
	s.flushed = true
	return nil
}
