package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stillwater/lodge/internal/apperr"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STORAGE_DRIVER", "minio")
	t.Setenv("STORAGE_ENDPOINT", "localhost:9000")
	t.Setenv("STORAGE_REGION", "us-east-1")
	t.Setenv("STORAGE_ACCESS_KEY", "minioadmin")
	t.Setenv("STORAGE_SECRET_KEY", "minioadmin")
	t.Setenv("STORAGE_BUCKET", "lodge-media")
	t.Setenv("STORAGE_PUBLIC_BASE", "http://localhost:9000/lodge-media")
	t.Setenv("REGISTRY_DRIVER", "memory")
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.UploadTTL)
	assert.Equal(t, 128, cfg.RegistryCacheSize)
	assert.Equal(t, 30*time.Second, cfg.RegistryCacheTTL)
	assert.Equal(t, "folder-index", cfg.RegistryFolderIndex)
	assert.False(t, cfg.IdentityEnabled())
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("STORAGE_PUBLIC_BASE", "")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConfiguration))
	assert.Contains(t, err.Error(), "STORAGE_BUCKET is required")
	assert.Contains(t, err.Error(), "STORAGE_PUBLIC_BASE is required")
}

func TestLoad_DriverRequirements(t *testing.T) {
	t.Run("postgres needs DATABASE_URL", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("REGISTRY_DRIVER", "postgres")
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("dynamodb needs REGISTRY_TABLE", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("REGISTRY_DRIVER", "dynamodb")
		t.Setenv("REGISTRY_TABLE", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REGISTRY_TABLE is required")
	})

	t.Run("s3 does not need static credentials", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORAGE_DRIVER", "s3")
		t.Setenv("STORAGE_ENDPOINT", "")
		t.Setenv("STORAGE_ACCESS_KEY", "")
		t.Setenv("STORAGE_SECRET_KEY", "")

		_, err := Load()
		require.NoError(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		setBaseEnv(t)
		t.Setenv("STORAGE_DRIVER", "ftp")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `STORAGE_DRIVER "ftp" is not supported`)
	})
}

func TestLoad_UploadTTLIsClamped(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"10s", MinUploadTTL},
		{"2m", 2 * time.Minute},
		{"1h", MaxUploadTTL},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv("UPLOAD_URL_TTL", tt.raw)

			cfg, err := Load()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.UploadTTL)
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPLOAD_URL_TTL", "soon")
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UPLOAD_URL_TTL")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}
