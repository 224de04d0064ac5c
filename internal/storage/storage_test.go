package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"u1/children/1700000000000.jpg", "u1/children/1700000000000.jpg", false},
		{"/u1/robins/1.png", "u1/robins/1.png", false},
		{"", "", true},
		{"u1/../u2/x.jpg", "", true},
		{"u1//x.jpg", "", true},
		{`u1\x.jpg`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CleanKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CleanKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOwnedBy(t *testing.T) {
	if !OwnedBy("u1/children/1.jpg", "u1") {
		t.Error("expected key to be owned by u1")
	}
	if OwnedBy("u10/children/1.jpg", "u1") {
		t.Error("u1 must not own u10's keys")
	}
	if OwnedBy("u1/children/1.jpg", "") {
		t.Error("empty user owns nothing")
	}
}

func TestLocalStoragePut(t *testing.T) {
	root := t.TempDir()
	s, err := NewLocalStorage(root, "http://localhost:8080/storage/v1/object/public/photos/")
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	url, err := s.Put(context.Background(), "u1/children/42.jpg", "image/jpeg", []byte("jpeg"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "http://localhost:8080/storage/v1/object/public/photos/u1/children/42.jpg" {
		t.Errorf("Put() url = %s", url)
	}

	data, err := os.ReadFile(filepath.Join(root, "u1", "children", "42.jpg"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "jpeg" {
		t.Errorf("stored data = %q", data)
	}

	if _, err := s.Put(context.Background(), "u1/children/42.txt", "text/plain", []byte("x")); !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Put(text/plain) error = %v, want ErrUnsupportedType", err)
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	return &s3.PutObjectOutput{}, f.err
}

func TestS3StoragePut(t *testing.T) {
	fake := &fakeS3{}
	s := newS3Storage(fake, "robinhood-photos", "https://cdn.example.com/", false)

	url, err := s.Put(context.Background(), "u1/drives/7.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if url != "https://cdn.example.com/u1/drives/7.png" {
		t.Errorf("Put() url = %s", url)
	}
	if *fake.input.Bucket != "robinhood-photos" || *fake.input.Key != "u1/drives/7.png" || *fake.input.ContentType != "image/png" {
		t.Errorf("PutObject input = %+v", fake.input)
	}

	fake.err = errors.New("access denied")
	if _, err := s.Put(context.Background(), "u1/drives/8.png", "image/png", nil); err == nil {
		t.Error("Put() should surface upload failures")
	}
}
