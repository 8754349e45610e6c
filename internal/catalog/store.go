// Package catalog reads the product collection from Firestore. The gateway
// never writes: the collection is owned entirely by the storefront's admin
// tooling.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ErrUnavailable means the Firestore connection was never established. This is
// decided once at startup and surfaced per request instead of crashing the
// process.
var ErrUnavailable = errors.New("catalog: store not connected")

// Product is a catalog document. The field set is provider-defined and opaque
// to this layer; only the "id" key is added here, from the document key.
type Product map[string]any

type Store struct {
	client     *firestore.Client
	collection string
}

// NewStore wraps a Firestore client. A nil client is allowed and produces a
// store whose reads fail with ErrUnavailable.
func NewStore(client *firestore.Client, collection string) *Store {
	return &Store{client: client, collection: collection}
}

// Connect builds a Firestore client from service account JSON. The project id
// is taken from the credentials themselves.
func Connect(ctx context.Context, credentialsJSON []byte) (*firestore.Client, error) {
	var account struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(credentialsJSON, &account); err != nil {
		return nil, fmt.Errorf("parse service account JSON: %w", err)
	}
	if account.ProjectID == "" {
		return nil, errors.New("service account JSON has no project_id")
	}

	return firestore.NewClient(ctx, account.ProjectID, option.WithCredentialsJSON(credentialsJSON))
}

// ListProducts returns one page of products ordered by name. Offset pagination:
// limit = pageSize, offset = (page-1)*pageSize, with page clamped to 1 so a
// negative offset never reaches the store.
func (s *Store) ListProducts(ctx context.Context, page, pageSize int) ([]Product, error) {
	if s == nil || s.client == nil {
		return nil, ErrUnavailable
	}

	limit, offset := pageWindow(page, pageSize)

	iter := s.client.Collection(s.collection).
		OrderBy("name", firestore.Asc).
		Offset(offset).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	products := []Product{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch products: %w", err)
		}

		product := Product(doc.Data())
		if product == nil {
			product = Product{}
		}
		product["id"] = doc.Ref.ID
		products = append(products, product)
	}

	return products, nil
}

func pageWindow(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
