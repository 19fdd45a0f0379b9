package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	bucket  string
	objects map[string][]byte
	failPut error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	f.bucket = aws.ToString(in.Bucket)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage_RoundTrip(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	s := &S3Storage{client: fake, bucket: "avatars"}
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "upload/ab/x.jpg", bytes.NewReader([]byte("jpeg"))))
	assert.Equal(t, "avatars", fake.bucket)

	rc, err := s.Get(ctx, "upload/ab/x.jpg")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "jpeg", string(body))

	require.NoError(t, s.Delete(ctx, "upload/ab/x.jpg"))
	_, err = s.Get(ctx, "upload/ab/x.jpg")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestS3Storage_SaveError(t *testing.T) {
	boom := errors.New("access denied")
	s := &S3Storage{client: &fakeS3{objects: map[string][]byte{}, failPut: boom}, bucket: "b"}

	err := s.Save(context.Background(), "k", bytes.NewReader(nil))
	assert.ErrorIs(t, err, boom)
}
