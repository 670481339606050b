package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/pkg/config"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "exports/owner-1/January_2025/run.xlsx", []byte("payload"), "")
	require.NoError(t, err)
	assert.Contains(t, location, "January_2025")

	file, err := store.Open("exports/owner-1/January_2025/run.xlsx")
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(context.Background(), "exports/owner-1/January_2025/run.xlsx"))
	require.NoError(t, store.Delete(context.Background(), "exports/owner-1/January_2025/run.xlsx"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "../outside.xlsx", []byte("x"), "")
	assert.Error(t, err)
	_, err = store.Save(context.Background(), "/etc/passwd", []byte("x"), "")
	assert.Error(t, err)
}

func TestS3StorageUploadsWithPathStyle(t *testing.T) {
	var gotPath, gotMethod, gotType string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store, err := NewS3Storage(config.S3Config{
		Endpoint:  server.URL,
		Region:    "us-east-1",
		Bucket:    "exports",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	location, err := store.Save(context.Background(), "exports/owner-1/January_2025/run.csv", []byte("a,b"), "text/csv")
	require.NoError(t, err)
	assert.Equal(t, "s3://exports/exports/owner-1/January_2025/run.csv", location)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/exports/exports/owner-1/January_2025/run.csv", gotPath)
	assert.Equal(t, "text/csv", gotType)
	assert.Equal(t, "a,b", string(gotBody))
}

func TestS3StorageRequiresBucket(t *testing.T) {
	_, err := NewS3Storage(config.S3Config{Region: "us-east-1"})
	assert.Error(t, err)
}
