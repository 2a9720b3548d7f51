package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeS3 struct {
	puts map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = body
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for k, v := range f.puts {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(v)))})
		}
	}
	return out, nil
}

func TestObjectKey(t *testing.T) {
	key := ObjectKey("uploads", "orders", "2024-03-05", "발주.XLSX", []byte("abc"))
	want := "uploads/orders/2024-03-05/ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad.xlsx"
	if key != want {
		t.Errorf("key = %s, want %s", key, want)
	}
	if k := ObjectKey("", "stocks", "2024-03-05", "noext", nil); !strings.HasPrefix(k, "stocks/2024-03-05/") || !strings.HasSuffix(k, ".bin") {
		t.Errorf("unexpected key %s", k)
	}
}

func TestArchiveAndList(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{puts: map[string][]byte{}}
	a := &S3Archive{client: fake, bucket: "erp", prefix: "uploads"}

	key, err := a.Archive(ctx, "orders", "2024-03-05", "orders.xlsx", []byte("one"))
	if err != nil {
		t.Fatal(err)
	}
	if string(fake.puts[key]) != "one" {
		t.Fatalf("object %s not stored", key)
	}
	if _, err := a.Archive(ctx, "orders", "2024-03-06", "orders.csv", []byte("two")); err != nil {
		t.Fatal(err)
	}

	objs, err := a.List(ctx, "orders", "2024-03-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(objs) != 1 || objs[0].Key != key || objs[0].Size != 3 {
		t.Errorf("unexpected listing: %+v", objs)
	}
	all, err := a.List(ctx, "orders", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 objects for the resource, got %d", len(all))
	}
}
