package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/samzhang111/icgauge/results"
)

// mockS3Client fakes the S3 API surface the store touches.
type mockS3Client struct {
	mock.Mock
}

func (m *mockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.PutObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.UploadPartOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CreateMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.CompleteMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.AbortMultipartUploadOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.GetObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.HeadObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return out, args.Error(1)
}

func (m *mockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3.ListObjectsV2Output)
	return out, args.Error(1)
}

func TestNew(t *testing.T) {
	_, err := New(nil, "bucket")
	require.Error(t, err)

	_, err = New(new(mockS3Client), "")
	require.Error(t, err)

	store, err := New(new(mockS3Client), "bucket", func(o *Options) {
		o.Prefix = "icgauge/"
	})
	require.NoError(t, err)
	assert.Equal(t, "icgauge/run.json", store.key("run.json"))
}

func TestStore_Put(t *testing.T) {
	mockClient := new(mockS3Client)
	store, err := New(mockClient, "test-bucket", func(o *Options) {
		o.Prefix = "icgauge/"
	})
	require.NoError(t, err)

	mockClient.On("PutObject", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "icgauge/run.details.json"
	})).Return(&s3.PutObjectOutput{}, nil).Once()

	err = store.Put(context.Background(), "run.details.json", []byte(`[{"example":"x"}]`))
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func TestStore_Open(t *testing.T) {
	t.Run("NotFound", func(t *testing.T) {
		mockClient := new(mockS3Client)
		store, err := New(mockClient, "test-bucket")
		require.NoError(t, err)

		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "absent.json"
		})).Return(nil, &types.NotFound{}).Once()

		_, err = store.Open(context.Background(), "absent.json")
		require.ErrorIs(t, err, results.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mockS3Client)
		store, err := New(mockClient, "test-bucket")
		require.NoError(t, err)

		payload := "hello"
		mockClient.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
			return *input.Key == "run.details.json"
		})).Return(&s3.HeadObjectOutput{
			ContentLength: aws.Int64(int64(len(payload))),
		}, nil).Once()

		mockClient.On("GetObject", mock.Anything, mock.MatchedBy(func(input *s3.GetObjectInput) bool {
			return *input.Key == "run.details.json"
		})).Return(&s3.GetObjectOutput{
			Body:          io.NopCloser(strings.NewReader(payload)),
			ContentLength: aws.Int64(int64(len(payload))),
			ContentRange:  aws.String(fmt.Sprintf("bytes 0-%d/%d", len(payload)-1, len(payload))),
		}, nil).Once()

		rc, err := store.Open(context.Background(), "run.details.json")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		assert.Equal(t, payload, string(data))
		mockClient.AssertExpectations(t)
	})
}

func TestStore_List(t *testing.T) {
	mockClient := new(mockS3Client)
	store, err := New(mockClient, "test-bucket", func(o *Options) {
		o.Prefix = "icgauge/"
	})
	require.NoError(t, err)

	// Page 1
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken == nil
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated:           aws.Bool(true),
		NextContinuationToken: aws.String("token"),
		Contents:              []types.Object{{Key: aws.String("icgauge/b.details.json")}},
	}, nil).Once()

	// Page 2
	mockClient.On("ListObjectsV2", mock.Anything, mock.MatchedBy(func(input *s3.ListObjectsV2Input) bool {
		return input.ContinuationToken != nil && *input.ContinuationToken == "token"
	})).Return(&s3.ListObjectsV2Output{
		IsTruncated: aws.Bool(false),
		Contents:    []types.Object{{Key: aws.String("icgauge/a.details.json")}},
	}, nil).Once()

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.details.json", "b.details.json"}, names)
	mockClient.AssertExpectations(t)
}

func TestStore_Delete(t *testing.T) {
	mockClient := new(mockS3Client)
	store, err := New(mockClient, "test-bucket", func(o *Options) {
		o.Prefix = "icgauge/"
	})
	require.NoError(t, err)

	mockClient.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return *input.Bucket == "test-bucket" && *input.Key == "icgauge/run.details.json"
	})).Return(&s3.DeleteObjectOutput{}, nil).Once()

	err = store.Delete(context.Background(), "run.details.json")
	require.NoError(t, err)
	mockClient.AssertExpectations(t)
}
