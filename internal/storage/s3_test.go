package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/profilevault/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu        sync.Mutex
	objects   map[string][]byte
	putErr    error
	createErr error
	lastPut   *s3.PutObjectInput
	lastCB    *s3.CreateBucketInput
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string][]byte{}} }

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastPut = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = b
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.lastCB = in
	return &s3.CreateBucketOutput{}, f.createErr
}

type fakePresign struct {
	in      *s3.GetObjectInput
	expires time.Duration
	err     error
}

func (p *fakePresign) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	if p.err != nil {
		return nil, p.err
	}
	var po s3.PresignOptions
	for _, fn := range optFns {
		fn(&po)
	}
	p.in = in
	p.expires = po.Expires
	return &v4.PresignedHTTPRequest{URL: "http://localstack:4566/" + *in.Bucket + "/" + *in.Key + "?X-Amz-Signature=abc"}, nil
}

func TestS3Store_PutAndGet(t *testing.T) {
	f := newFakeS3()
	s := NewS3StoreWithClients(f, &fakePresign{}, "pdf-bucket", "us-east-1")

	require.NoError(t, s.Put(context.Background(), "profiles/42.pdf", []byte("PDF-BYTES")))
	assert.Equal(t, "application/pdf", aws.ToString(f.lastPut.ContentType))
	assert.Equal(t, int64(9), aws.ToInt64(f.lastPut.ContentLength))

	got, err := s.Get(context.Background(), "profiles/42.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("PDF-BYTES"), got)
}

func TestS3Store_PutOverwrites(t *testing.T) {
	f := newFakeS3()
	s := NewS3StoreWithClients(f, &fakePresign{}, "b", "")

	require.NoError(t, s.Put(context.Background(), "profiles/7.pdf", []byte("one")))
	require.NoError(t, s.Put(context.Background(), "profiles/7.pdf", []byte("two")))

	got, err := s.Get(context.Background(), "profiles/7.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestS3Store_PutError(t *testing.T) {
	f := newFakeS3()
	f.putErr = errors.New("connection refused")
	s := NewS3StoreWithClients(f, &fakePresign{}, "b", "")

	err := s.Put(context.Background(), "profiles/1.pdf", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.ErrorContains(t, err, "connection refused")
}

func TestS3Store_GetMissing(t *testing.T) {
	s := NewS3StoreWithClients(newFakeS3(), &fakePresign{}, "b", "")

	_, err := s.Get(context.Background(), "profiles/none.pdf")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Store_PresignGet(t *testing.T) {
	p := &fakePresign{}
	s := NewS3StoreWithClients(newFakeS3(), p, "pdf-bucket", "")

	url, err := s.PresignGet(context.Background(), "profiles/42.pdf", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "pdf-bucket/profiles/42.pdf")
	assert.Equal(t, time.Hour, p.expires)
	assert.Equal(t, "profiles/42.pdf", aws.ToString(p.in.Key))
}

func TestS3Store_PresignGetError(t *testing.T) {
	s := NewS3StoreWithClients(newFakeS3(), &fakePresign{err: errors.New("no creds")}, "b", "")

	_, err := s.PresignGet(context.Background(), "k", time.Minute)
	assert.ErrorContains(t, err, "no creds")
}

func TestS3Store_EnsureBucket(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{name: "created", err: nil},
		{name: "owned by you", err: &types.BucketAlreadyOwnedByYou{}},
		{name: "exists", err: &types.BucketAlreadyExists{}},
		{name: "generic api code", err: &smithy.GenericAPIError{Code: "BucketAlreadyOwnedByYou"}},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}, wantErr: true},
		{name: "network", err: errors.New("dial tcp: refused"), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFakeS3()
			f.createErr = tc.err
			s := NewS3StoreWithClients(f, &fakePresign{}, "pdf-bucket", "us-east-1")

			err := s.EnsureBucket(context.Background())
			if tc.wantErr {
				assert.ErrorIs(t, err, common.ErrProvisioning)
				return
			}
			assert.NoError(t, err)
			assert.Nil(t, f.lastCB.CreateBucketConfiguration)
		})
	}
}

func TestS3Store_EnsureBucketLocationConstraint(t *testing.T) {
	f := newFakeS3()
	s := NewS3StoreWithClients(f, &fakePresign{}, "b", "eu-west-1")

	require.NoError(t, s.EnsureBucket(context.Background()))
	require.NotNil(t, f.lastCB.CreateBucketConfiguration)
	assert.Equal(t, types.BucketLocationConstraint("eu-west-1"), f.lastCB.CreateBucketConfiguration.LocationConstraint)
}

func TestNewS3Store_UsesPathStyle(t *testing.T) {
	origNew := newS3ClientFromConfig
	t.Cleanup(func() { newS3ClientFromConfig = origNew })

	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		pathStyle = o.UsePathStyle
		return s3.New(o)
	}

	s := NewS3Store(aws.Config{Region: "us-east-1"}, "pdf-bucket")
	assert.True(t, pathStyle)
	assert.Equal(t, "pdf-bucket", s.Bucket())
}
