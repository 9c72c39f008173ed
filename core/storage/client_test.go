package storage_test

import (
	"testing"

	"tablesync/core/storage"

	"github.com/stretchr/testify/assert"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     storage.Config
		wantErr bool
	}{
		{
			name: "ValidConfig",
			cfg: storage.Config{
				Endpoint:  "localhost:9000",
				AccessKey: "testkey",
				SecretKey: "testsecret",
				Bucket:    "test-bucket",
				Region:    "us-east-1",
			},
		},
		{
			name: "EndpointWithHTTP",
			cfg:  storage.Config{Endpoint: "http://localhost:9000", AccessKey: "testkey", SecretKey: "testsecret"},
		},
		{
			name: "EndpointWithHTTPS",
			cfg:  storage.Config{Endpoint: "https://s3.amazonaws.com", AccessKey: "testkey", SecretKey: "testsecret", Region: "us-east-1"},
		},
		{
			name:    "EmptyEndpoint",
			cfg:     storage.Config{Endpoint: "https://"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := storage.NewClient(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, client)
		})
	}
}
