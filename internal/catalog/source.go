package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/utafrali/storefront/pkg/httpclient"

	"github.com/utafrali/storefront/internal/domain"
)

//go:embed seed/products.yaml
var seedProducts []byte

// Source produces the product list the catalog is built from.
type Source interface {
	Load(ctx context.Context) ([]domain.Product, error)
}

// EmbeddedSource serves the demo catalog compiled into the binary.
type EmbeddedSource struct{}

// Load decodes the embedded YAML seed.
func (EmbeddedSource) Load(_ context.Context) ([]domain.Product, error) {
	return DecodeYAML(seedProducts)
}

// FileSource reads a catalog file. Files ending in .json are decoded as JSON,
// anything else as YAML.
type FileSource struct {
	Path string
}

// Load reads and decodes the file.
func (s FileSource) Load(_ context.Context) ([]domain.Product, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		return DecodeJSON(data)
	}
	return DecodeYAML(data)
}

// RemoteSource fetches the catalog from a product service that answers with
// the standard {"data": [...]} envelope.
type RemoteSource struct {
	Client httpclient.Doer
	URL    string
}

// Load fetches the product list.
func (s RemoteSource) Load(ctx context.Context) ([]domain.Product, error) {
	var envelope struct {
		Data []domain.Product `json:"data"`
	}
	if err := httpclient.GetJSON(ctx, s.Client, s.URL, "catalog", &envelope); err != nil {
		return nil, fmt.Errorf("fetch remote catalog: %w", err)
	}
	return envelope.Data, nil
}

// DecodeYAML decodes a YAML sequence of products.
func DecodeYAML(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return products, nil
}

// DecodeJSON decodes a JSON array of products.
func DecodeJSON(data []byte) ([]domain.Product, error) {
	var products []domain.Product
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog json: %w", err)
	}
	return products, nil
}

// Load builds a store from src.
func Load(ctx context.Context, src Source) (*Store, error) {
	products, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	return New(products)
}
