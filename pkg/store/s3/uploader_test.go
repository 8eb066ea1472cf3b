package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3sdk "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/report-atlas/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPutObject struct {
	mock.Mock
}

func (m *mockPutObject) PutObject(ctx context.Context, params *s3sdk.PutObjectInput, _ ...func(*s3sdk.Options)) (*s3sdk.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*s3sdk.PutObjectOutput)
	return out, args.Error(1)
}

func TestNewUploader(t *testing.T) {
	_, err := NewUploader(nil, "bucket", "")
	assert.Error(t, err)
	_, err = NewUploader(&mockPutObject{}, "", "")
	assert.Error(t, err)
}

func TestUploader_Upload(t *testing.T) {
	api := &mockPutObject{}
	uploader, err := NewUploader(api, "reports", "/exports/prod/")
	require.NoError(t, err)

	api.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3sdk.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "reports" &&
			aws.ToString(in.Key) == "exports/prod/pipeline.xlsx" &&
			aws.ToString(in.ContentType) == "application/xlsx" &&
			in.Metadata["report-id"] == "00O1" &&
			string(body) == "data"
	})).Return(&s3sdk.PutObjectOutput{}, nil).Once()

	uri, err := uploader.Upload(context.Background(), &store.File{
		Name: "pipeline.xlsx", ContentType: "application/xlsx", Content: []byte("data"),
	}, map[string]string{"report-id": "00O1"})

	require.NoError(t, err)
	assert.Equal(t, "s3://reports/exports/prod/pipeline.xlsx", uri)
	api.AssertExpectations(t)
}

func TestUploader_UploadError(t *testing.T) {
	api := &mockPutObject{}
	uploader, err := NewUploader(api, "reports", "")
	require.NoError(t, err)
	boom := errors.New("access denied")
	api.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom)

	_, err = uploader.Upload(context.Background(), &store.File{Name: "a.json"}, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "a.json", uploader.Key("a.json"))
}
