package storage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseS3Location(t *testing.T) {
	bucket, key, ok := ParseS3Location("s3://catalog/templates/ppl.yaml")
	require.True(t, ok)
	assert.Equal(t, "catalog", bucket)
	assert.Equal(t, "templates/ppl.yaml", key)

	for _, bad := range []string{"templates/ppl.yaml", "s3://catalog", "s3:///key", "s3://catalog/"} {
		_, _, ok := ParseS3Location(bad)
		assert.False(t, ok, bad)
	}
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("WorkoutTemplate: {}"), 0o600))

	data, err := LocalSource{}.ReadDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "WorkoutTemplate: {}", string(data))

	_, err = LocalSource{}.ReadDocument(context.Background(), filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

type fakeGetter struct {
	objects map[string]string
	input   *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestS3SourceReadDocument(t *testing.T) {
	getter := &fakeGetter{objects: map[string]string{"catalog/ppl.yaml": "WorkoutTemplate: {}"}}
	src := &s3Source{client: getter, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	data, err := src.ReadDocument(context.Background(), "s3://catalog/ppl.yaml")
	require.NoError(t, err)
	assert.Equal(t, "WorkoutTemplate: {}", string(data))
	assert.Equal(t, "catalog", aws.ToString(getter.input.Bucket))

	_, err = src.ReadDocument(context.Background(), "s3://catalog/missing.yaml")
	assert.ErrorIs(t, err, ErrObjectNotFound)

	_, err = src.ReadDocument(context.Background(), "s3://catalog")
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	require.NoError(t, os.WriteFile(path, []byte("local"), 0o600))

	r := Router{Local: LocalSource{}}
	data, err := r.ReadDocument(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "local", string(data))

	_, err = r.ReadDocument(context.Background(), "s3://bucket/key")
	assert.Error(t, err, "no S3 source configured")

	r.S3 = &s3Source{
		client: &fakeGetter{objects: map[string]string{"bucket/key": "remote"}},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	data, err = r.ReadDocument(context.Background(), "s3://bucket/key")
	require.NoError(t, err)
	assert.Equal(t, "remote", string(data))
}
