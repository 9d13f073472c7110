// Package downloads builds the list of installer links handed to
// authenticated users, either as plain URLs under a public base or as
// short-lived presigned S3/R2 URLs.
package downloads

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"xuper/internal/dto"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Artifact struct {
	FileName    string
	FileVersion string
	Platform    string
	Key         string
}

// ParseArtifacts reads a comma separated list of
// "fileName|fileVersion|platform|key" entries.
func ParseArtifacts(raw string) ([]Artifact, error) {
	var out []Artifact
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("artifact %q: want fileName|fileVersion|platform|key", entry)
		}
		a := Artifact{
			FileName:    strings.TrimSpace(parts[0]),
			FileVersion: strings.TrimSpace(parts[1]),
			Platform:    strings.TrimSpace(parts[2]),
			Key:         strings.TrimLeft(strings.TrimSpace(parts[3]), "/"),
		}
		if a.FileName == "" || a.Key == "" {
			return nil, fmt.Errorf("artifact %q: fileName and key are required", entry)
		}
		out = append(out, a)
	}
	return out, nil
}

type Source interface {
	Links(ctx context.Context) ([]dto.DownloadLink, error)
}

type StaticSource struct {
	BaseURL   string
	Artifacts []Artifact
}

func (s StaticSource) Links(context.Context) ([]dto.DownloadLink, error) {
	base := strings.TrimRight(s.BaseURL, "/")
	out := make([]dto.DownloadLink, 0, len(s.Artifacts))
	for _, a := range s.Artifacts {
		u, err := url.JoinPath(base, a.Key)
		if err != nil {
			return nil, err
		}
		out = append(out, link(a, u))
	}
	return out, nil
}

type getPresigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Source struct {
	Presigner getPresigner
	Bucket    string
	TTL       time.Duration
	Artifacts []Artifact
}

func (s S3Source) Links(ctx context.Context) ([]dto.DownloadLink, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	out := make([]dto.DownloadLink, 0, len(s.Artifacts))
	for _, a := range s.Artifacts {
		req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.Bucket),
			Key:    aws.String(a.Key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return nil, fmt.Errorf("presign %s: %w", a.Key, err)
		}
		out = append(out, link(a, req.URL))
	}
	return out, nil
}

func link(a Artifact, u string) dto.DownloadLink {
	return dto.DownloadLink{
		FileName:    a.FileName,
		FileVersion: a.FileVersion,
		Platform:    a.Platform,
		URL:         u,
	}
}

type S3Config struct {
	Region          string
	Endpoint        string // empty for AWS; set for R2/MinIO
	AccessKeyID     string
	SecretAccessKey string
}

// NewPresignClient builds a presigner from static credentials when given,
// falling back to the default AWS credential chain otherwise.
func NewPresignClient(ctx context.Context, cfg S3Config) (*s3.PresignClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s3.NewPresignClient(client), nil
}
