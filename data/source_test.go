package data

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-fare-model/config"
)

type fakeS3 struct {
	body   string
	err    error
	bucket string
	key    string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestLocalSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	table, err := GetData(context.Background(), &LocalSource{Path: path}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
}

func TestLocalSource_MissingFile(t *testing.T) {
	_, err := GetData(context.Background(), &LocalSource{Path: filepath.Join(t.TempDir(), "nope.csv")}, 10)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestS3Source(t *testing.T) {
	client := &fakeS3{body: sampleCSV}
	src := &S3Source{Client: client, Bucket: "wagon-public-datasets", Key: "taxi-fare-train.csv"}

	table, err := GetData(context.Background(), src, 0)
	require.NoError(t, err)

	assert.Equal(t, 4, table.Len())
	assert.Equal(t, "wagon-public-datasets", client.bucket)
	assert.Equal(t, "taxi-fare-train.csv", client.key)
	assert.Equal(t, "s3://wagon-public-datasets/taxi-fare-train.csv", src.String())
}

func TestS3Source_Unreachable(t *testing.T) {
	boom := errors.New("no route to host")
	src := &S3Source{Client: &fakeS3{err: boom}, Bucket: "b", Key: "k"}

	_, err := GetData(context.Background(), src, 0)
	assert.ErrorIs(t, err, boom)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	src, err := NewSource(ctx, config.DataConfig{Source: "local", LocalPath: "raw_data/x.csv"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &LocalSource{}, src)

	_, err = NewSource(ctx, config.DataConfig{Source: "postgres"}, nil)
	assert.Error(t, err)

	_, err = NewSource(ctx, config.DataConfig{Source: "ftp"}, nil)
	assert.ErrorIs(t, err, ErrUnknownSource)
}
