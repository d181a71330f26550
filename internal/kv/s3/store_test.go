package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeClient struct {
	objects map[string][]byte
	failGet error
}

func (f *fakeClient) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeClient) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fc := &fakeClient{objects: map[string][]byte{}}
	st := NewWithClient(fc, "garden", "prefs")

	if _, ok, err := st.Get(ctx, "rules"); err != nil || ok {
		t.Fatalf("Get(absent) = %v, %v", ok, err)
	}
	if err := st.Put(ctx, "rules", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok := fc.objects["garden/prefs/rules.json"]; !ok {
		t.Errorf("object key not prefixed: %v", fc.objects)
	}
	got, ok, err := st.Get(ctx, "rules")
	if err != nil || !ok || string(got) != `{}` {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}
}

func TestStoreGetError(t *testing.T) {
	fc := &fakeClient{objects: map[string][]byte{}, failGet: errors.New("denied")}
	st := NewWithClient(fc, "garden", "")
	if _, _, err := st.Get(context.Background(), "rules"); err == nil {
		t.Error("expected error")
	}
}

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected bucket error")
	}
}
