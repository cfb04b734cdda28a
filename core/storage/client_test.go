package storage_test

import (
	"context"
	"testing"
	"time"

	"dialog-collator/core/storage"
	"dialog-collator/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"Plain endpoint", storage.Config{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTP scheme", storage.Config{Endpoint: "http://localhost:9000", AccessKey: "k", SecretKey: "s"}},
		{"HTTPS scheme", storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "k", SecretKey: "s", UseSSL: true, Region: "us-east-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}

func TestConfig_Timeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, storage.Config{}.Timeout())
	assert.Equal(t, 5*time.Second, storage.Config{TimeoutSeconds: 5}.Timeout())
}

func TestEnsureBucket(t *testing.T) {
	ctx := context.Background()

	t.Run("Exists", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "archive").Return(true, nil)

		assert.NoError(t, storage.EnsureBucket(ctx, c, "archive", ""))
		c.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "archive").Return(false, nil)
		c.On("MakeBucket", ctx, "archive", minio.MakeBucketOptions{Region: "eu-west-1"}).Return(nil)

		assert.NoError(t, storage.EnsureBucket(ctx, c, "archive", "eu-west-1"))
		c.AssertExpectations(t)
	})

	t.Run("Check fails", func(t *testing.T) {
		c := new(mocks.Client)
		c.On("BucketExists", ctx, "archive").Return(false, assert.AnError)

		assert.ErrorIs(t, storage.EnsureBucket(ctx, c, "archive", ""), assert.AnError)
	})
}
