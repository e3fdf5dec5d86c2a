package storage_test

import (
	"context"
	"errors"
	"testing"

	"slideforge/core/storage"
	"slideforge/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestBundleFetcher_Fetch(t *testing.T) {
	cfg := storage.Config{Bucket: "assets", BundlePrefix: "bundles/"}

	t.Run("BundlePresent", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("StatObject", mock.Anything, "assets", "bundles/chart-render-pack", minio.StatObjectOptions{}).
			Return(minio.ObjectInfo{Key: "bundles/chart-render-pack", Size: 1024}, nil)

		fetcher := storage.NewBundleFetcher(client, cfg)
		err := fetcher.Fetch(context.Background(), "chart-render-pack")
		require.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("BundleMissing", func(t *testing.T) {
		statErr := errors.New("The specified key does not exist")
		client := new(mocks.Client)
		client.On("StatObject", mock.Anything, "assets", "bundles/voice-model", minio.StatObjectOptions{}).
			Return(minio.ObjectInfo{}, statErr)

		fetcher := storage.NewBundleFetcher(client, cfg)
		err := fetcher.Fetch(context.Background(), "voice-model")
		require.Error(t, err)
		assert.ErrorIs(t, err, statErr)
		assert.Contains(t, err.Error(), "bundles/voice-model")
	})
}
