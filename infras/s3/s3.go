package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"stayvista/config"
	"stayvista/infras/otel"
	"stayvista/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	region       = "auto"
	sniffLen     = 512
	cacheControl = "public, max-age=31536000, immutable"
)

// S3 stores room images in an S3-compatible bucket. An empty bucket name means
// the configured default.
type S3 interface {
	UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error)
	DeleteFile(ctx context.Context, bucketName, directory, objectName string) error
	GetObjectNameFromURL(bucketName, url string) (objectName string)
}

type s3Impl struct {
	client       *s3.Client
	bucket       string
	publicDomain string
	apiEndpoint  string
	otel         otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) S3 {
	settings := cfg.External.S3

	awsCfg, err := awsConfig.LoadDefaultConfig(
		context.Background(),
		awsConfig.WithRegion(region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(settings.AccessKeyID, settings.SecretAccessKey, "")),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to load object storage configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if settings.APIEndpoint != constant.Empty {
			o.BaseEndpoint = aws.String(settings.APIEndpoint)
		}

		o.UsePathStyle = true
	})

	return &s3Impl{
		client:       client,
		bucket:       settings.BucketName,
		publicDomain: strings.TrimSuffix(settings.PublicDomain, "/"),
		apiEndpoint:  strings.TrimSuffix(settings.APIEndpoint, "/"),
		otel:         otel,
	}
}

func (svc *s3Impl) bucketOr(name string) string {
	if name == constant.Empty {
		return svc.bucket
	}

	return name
}

// UploadFile streams file to directory/fileName and returns its public URL.
func (svc *s3Impl) UploadFile(ctx context.Context, bucketName, directory string, file multipart.File, fileHeader *multipart.FileHeader, fileName string) (url string, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".UploadFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.bucketOr(bucketName)
	key := path.Join(directory, fileName)

	contentType := fileHeader.Header.Get(constant.RequestHeaderContentType)
	if contentType == constant.Empty {
		if contentType, err = sniff(file); err != nil {
			return constant.Empty, err
		}
	}

	scope.SetAttributes(map[string]any{
		"bucket":       bucket,
		"key":          key,
		"content_type": contentType,
		"size":         fileHeader.Size,
	})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          file,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fileHeader.Size),
		CacheControl:  aws.String(cacheControl),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("failed to upload object")

		return constant.Empty, fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return svc.publicDomain + "/" + key, nil
}

// sniff detects the content type from the first bytes and rewinds file.
func sniff(file multipart.File) (string, error) {
	head := make([]byte, sniffLen)

	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return constant.Empty, fmt.Errorf("failed to read upload: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return constant.Empty, fmt.Errorf("failed to rewind upload: %w", err)
	}

	return http.DetectContentType(head[:n]), nil
}

func (svc *s3Impl) DeleteFile(ctx context.Context, bucketName, directory, objectName string) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".DeleteFile")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucket := svc.bucketOr(bucketName)
	key := path.Join(directory, objectName)

	scope.SetAttributes(map[string]any{"bucket": bucket, "key": key})

	if _, err = svc.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}); err != nil {
		log.Error().Err(err).Str("bucket", bucket).Str("key", key).Msg("failed to delete object")

		return fmt.Errorf("failed to delete %s: %w", key, err)
	}

	return nil
}

// GetObjectNameFromURL returns the base name of an object served from the public
// domain or the path-style API endpoint, or "" for a URL this store does not own.
func (svc *s3Impl) GetObjectNameFromURL(bucketName, url string) string {
	prefixes := make([]string, 0, 2)

	if svc.publicDomain != constant.Empty {
		prefixes = append(prefixes, svc.publicDomain+"/")
	}

	if svc.apiEndpoint != constant.Empty {
		prefixes = append(prefixes, svc.apiEndpoint+"/"+svc.bucketOr(bucketName)+"/")
	}

	for _, prefix := range prefixes {
		if key, ok := strings.CutPrefix(url, prefix); ok && key != constant.Empty {
			return path.Base(key)
		}
	}

	return constant.Empty
}
