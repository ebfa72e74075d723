// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package nutrition

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (putter *recordingPutter) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if putter.err != nil {
		return nil, putter.err
	}
	body, _ := io.ReadAll(input.Body)
	putter.inputs = append(putter.inputs, input)
	putter.bodies = append(putter.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

var uuidV7Key = regexp.MustCompile(`^uploads/alice/[0-9a-f]{8}-[0-9a-f]{4}-7[0-9a-f]{3}-[0-9a-f]{4}-[0-9a-f]{12}-lunch\.jpg$`)

/*
TestS3Archive_Store verifies the object key layout and metadata.
*/
func TestS3Archive_Store(t *testing.T) {
	putter := &recordingPutter{}
	archive := &S3Archive{client: putter, bucket: "plates"}

	key, err := archive.Store(context.Background(), "alice", Image{Filename: "lunch.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")})
	require.NoError(t, err)
	assert.Regexp(t, uuidV7Key, key)

	require.Len(t, putter.inputs, 1)
	input := putter.inputs[0]
	assert.Equal(t, "plates", aws.ToString(input.Bucket))
	assert.Equal(t, key, aws.ToString(input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(input.ContentLength))
	assert.Equal(t, "jpeg", string(putter.bodies[0]))
}

/*
TestS3Archive_StoreFailure verifies put errors are wrapped, not swallowed.
*/
func TestS3Archive_StoreFailure(t *testing.T) {
	denied := errors.New("access denied")
	archive := &S3Archive{client: &recordingPutter{err: denied}, bucket: "plates"}

	_, err := archive.Store(context.Background(), "alice", Image{Filename: "x.png"})
	assert.ErrorIs(t, err, denied)
}

/*
TestArchiveKey_StaysInUserFolder checks hostile usernames and filenames.
*/
func TestArchiveKey_StaysInUserFolder(t *testing.T) {
	tests := []struct {
		username   string
		filename   string
		wantPrefix string
		wantSuffix string
	}{
		{"alice", `C:\photos\meal.png`, "uploads/alice/", "-meal.png"},
		{"../bob", "../../etc/passwd", "uploads/..%2Fbob/", "-passwd"},
		{"..", "", "uploads/_/", "-image"},
	}

	for _, tt := range tests {
		key := ArchiveKey(tt.username, tt.filename)
		assert.Regexp(t, "^"+regexp.QuoteMeta(tt.wantPrefix), key)
		assert.Regexp(t, regexp.QuoteMeta(tt.wantSuffix)+"$", key)
	}
}
