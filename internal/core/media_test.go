package core

import (
	"context"
	"strings"
	"testing"

	"realtycore/internal/blob"
	blobmem "realtycore/internal/infra/blob/memory"
	"realtycore/pkg/domain"
)

func TestAttachPropertyImage(t *testing.T) {
	blobs := blobmem.New()
	svc := newTestService(t, WithBlobStore(blobs))
	ctx := context.Background()

	property, err := svc.CreateProperty(ctx, Property{Address: "12 Oak St", Price: 450000})
	if err != nil {
		t.Fatalf("create property: %v", err)
	}

	updated, info, err := svc.AttachPropertyImage(ctx, property.ID, "front.jpg", strings.NewReader("jpegdata"), blob.PutOptions{ContentType: "image/jpeg"})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	if info.Key != "properties/"+property.ID+"/front.jpg" {
		t.Fatalf("unexpected key %s", info.Key)
	}
	if len(updated.Images) != 1 {
		t.Fatalf("image url not appended: %+v", updated.Images)
	}

	infos, err := svc.ListPropertyImages(ctx, property.ID)
	if err != nil {
		t.Fatalf("list images: %v", err)
	}
	if len(infos) != 1 || infos[0].Key != info.Key {
		t.Fatalf("listing wrong: %+v", infos)
	}
}

func TestAttachPropertyImageMissingProperty(t *testing.T) {
	svc := newTestService(t, WithBlobStore(blobmem.New()))
	_, _, err := svc.AttachPropertyImage(context.Background(), "missing", "a.jpg", strings.NewReader("x"), blob.PutOptions{})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestAttachPropertyImageWithoutStore(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.AttachPropertyImage(context.Background(), "p1", "a.jpg", strings.NewReader("x"), blob.PutOptions{}); err == nil {
		t.Fatalf("expected error when no blob store configured")
	}
}
