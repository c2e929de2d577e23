package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

type fakeObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

// fakeS3 implements API over a map keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]fakeObject
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]fakeObject)}
}

func (f *fakeS3) HeadObject(_ context.Context, in *awss3.HeadObjectInput, _ ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.headErr != nil {
		return nil, f.headErr
	}
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &awss3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.data))),
		ContentType:   aws.String(obj.contentType),
		Metadata:      obj.metadata,
	}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *awss3.GetObjectInput, _ ...func(*awss3.Options)) (*awss3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &awss3.GetObjectOutput{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: aws.String(obj.contentType),
		Metadata:    obj.metadata,
	}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = fakeObject{
		data:        data,
		contentType: aws.ToString(in.ContentType),
		metadata:    in.Metadata,
	}
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

var _ API = (*fakeS3)(nil)

func TestStore_PutHeadGet(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, Config{Bucket: "assets", Prefix: "prod/"})
	ctx := context.Background()

	err := store.Put(ctx, "figma-cache/Icons/1:2", []byte("png"), domain.PutOptions{
		ContentType: domain.ContentTypePNG,
		Metadata:    map[string]string{domain.HashMetadataKey: "abc"},
	})
	require.NoError(t, err)
	assert.Contains(t, fake.objects, "assets/prod/figma-cache/Icons/1:2")

	info, err := store.Head(ctx, "figma-cache/Icons/1:2")
	require.NoError(t, err)
	assert.Equal(t, "figma-cache/Icons/1:2", info.Key)
	assert.Equal(t, int64(3), info.Size)
	assert.Equal(t, "abc", info.Hash())

	data, info, err := store.Get(ctx, "figma-cache/Icons/1:2")
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.Equal(t, domain.ContentTypePNG, info.ContentType)
}

func TestStore_NotFound(t *testing.T) {
	store := NewWithClient(newFakeS3(), Config{Bucket: "assets"})
	ctx := context.Background()

	_, err := store.Head(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ok, err := store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_OtherErrorsPropagate(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("access denied")
	store := NewWithClient(fake, Config{Bucket: "assets"})

	_, err := store.Head(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "access denied")
}

func TestStore_Delete(t *testing.T) {
	fake := newFakeS3()
	store := NewWithClient(fake, Config{Bucket: "assets"})
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), domain.PutOptions{}))
	require.NoError(t, store.Delete(ctx, "k"))
	assert.Empty(t, fake.objects)
}

func TestStore_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"regional", Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/k"},
		{"global", Config{Bucket: "b"}, "https://b.s3.amazonaws.com/k"},
		{"custom endpoint", Config{Bucket: "b", Endpoint: "http://minio:9000/"}, "http://minio:9000/b/k"},
		{"public base", Config{Bucket: "b", Region: "x", PublicBaseURL: "https://cdn.example.com/"}, "https://cdn.example.com/k"},
		{"prefix", Config{Bucket: "b", Region: "x", Prefix: "p/"}, "https://b.s3.x.amazonaws.com/p/k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewWithClient(newFakeS3(), tt.cfg).PublicURL("k"))
		})
	}
}

func TestStore_PrefixMatchesCatalogueURL(t *testing.T) {
	for _, prefix := range []string{"assets", "assets/", "/assets"} {
		t.Run(prefix, func(t *testing.T) {
			fake := newFakeS3()
			store := NewWithClient(fake, Config{Bucket: "b", Region: "r", Prefix: prefix})
			key := domain.AssetKey("Icons", "1")

			require.NoError(t, store.Put(context.Background(), key, []byte("png"), domain.PutOptions{}))
			assert.Contains(t, fake.objects, "b/assets/figma-cache/Icons/1")

			base := strings.TrimSuffix(store.PublicURL(""), "/")
			assert.Equal(t, "https://b.s3.r.amazonaws.com/assets/figma-cache/Icons/1",
				domain.AssetURL(base, "F1", "Icons", "1", 0))
			assert.Equal(t, store.PublicURL(key), domain.AssetURL(base, "F1", "Icons", "1", 0))
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
