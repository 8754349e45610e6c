package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestPageWindow(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		pageSize   int
		wantLimit  int
		wantOffset int
	}{
		{name: "first page", page: 1, pageSize: 50, wantLimit: 50, wantOffset: 0},
		{name: "second page", page: 2, pageSize: 50, wantLimit: 50, wantOffset: 50},
		{name: "third page small size", page: 3, pageSize: 20, wantLimit: 20, wantOffset: 40},
		{name: "page zero clamps to first", page: 0, pageSize: 50, wantLimit: 50, wantOffset: 0},
		{name: "negative page clamps to first", page: -5, pageSize: 50, wantLimit: 50, wantOffset: 0},
		{name: "page size one", page: 10, pageSize: 1, wantLimit: 1, wantOffset: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := pageWindow(tt.page, tt.pageSize)
			if limit != tt.wantLimit {
				t.Errorf("expected limit %d, got %d", tt.wantLimit, limit)
			}
			if offset != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, offset)
			}
		})
	}
}

func TestListProducts_NotConnected(t *testing.T) {
	store := NewStore(nil, "products")

	_, err := store.ListProducts(context.Background(), 1, 50)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestConnect_RejectsBadCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds string
	}{
		{name: "not json", creds: "not-json"},
		{name: "missing project id", creds: `{"type":"service_account"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Connect(context.Background(), []byte(tt.creds)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
