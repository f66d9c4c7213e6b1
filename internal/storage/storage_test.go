package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap/zaptest"

	"github.com/djtrip/backend/internal/config"
)

func TestPublicReadPolicy(t *testing.T) {
	var policy struct {
		Statement []struct {
			Effect    string
			Principal string
			Action    string
			Resource  string
		}
	}
	if err := json.Unmarshal([]byte(publicReadPolicy("trip-images")), &policy); err != nil {
		t.Fatal(err)
	}
	if len(policy.Statement) != 1 {
		t.Fatalf("got %d statements", len(policy.Statement))
	}
	st := policy.Statement[0]
	if st.Effect != "Allow" || st.Principal != "*" || st.Action != "s3:GetObject" ||
		st.Resource != "arn:aws:s3:::trip-images/*" {
		t.Fatalf("unexpected statement %+v", st)
	}
}

func TestPutOptions(t *testing.T) {
	opts := putOptions("image/png")
	if opts.ContentType != "image/png" || opts.UserMetadata["x-amz-acl"] != "public-read" {
		t.Fatalf("unexpected options %+v", opts)
	}
}

func TestPutObjectInput(t *testing.T) {
	in := putObjectInput("bucket", "|k.png", strings.NewReader("data"), 4, "image/png")
	if aws.ToString(in.Bucket) != "bucket" || aws.ToString(in.Key) != "|k.png" {
		t.Fatalf("unexpected target %q/%q", aws.ToString(in.Bucket), aws.ToString(in.Key))
	}
	if aws.ToInt64(in.ContentLength) != 4 || aws.ToString(in.ContentType) != "image/png" {
		t.Fatal("content metadata not set")
	}
	if in.ACL != types.ObjectCannedACLPublicRead {
		t.Fatalf("acl = %q", in.ACL)
	}
}

func TestS3Endpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		ssl      bool
		want     string
	}{
		{"", true, ""},
		{"localhost:9000", false, "http://localhost:9000"},
		{"s3.example.com", true, "https://s3.example.com"},
		{"https://s3.example.com", false, "https://s3.example.com"},
	}
	for _, tt := range tests {
		if got := s3Endpoint(tt.endpoint, tt.ssl); got != tt.want {
			t.Errorf("s3Endpoint(%q, %v) = %q, want %q", tt.endpoint, tt.ssl, got, tt.want)
		}
	}
}

func TestNewS3StorageDoesNotDial(t *testing.T) {
	s, err := NewS3Storage(context.Background(), S3Options{
		Endpoint:  "http://localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Bucket:    "trip-images",
		Region:    "ap-northeast-2",
	}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	if s.bucket != "trip-images" {
		t.Fatalf("bucket = %q", s.bucket)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageDriver: "gcs"}, zaptest.NewLogger(t))
	if err == nil {
		t.Fatal("expected error")
	}
}
