// Package api persists catalog records through the catalog HTTP API instead
// of writing to its database directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/utafrali/catalog-fixtures/internal/domain"
	"github.com/utafrali/catalog-fixtures/pkg/httpclient"
)

const serviceName = "catalog-api"

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

type productAttributeRequest struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

type createProductRequest struct {
	Code       string                    `json:"code"`
	Name       string                    `json:"name"`
	Slug       string                    `json:"slug"`
	MainTaxon  string                    `json:"main_taxon,omitempty"`
	Archetype  string                    `json:"archetype,omitempty"`
	Taxons     []string                  `json:"taxons,omitempty"`
	Attributes []productAttributeRequest `json:"attributes,omitempty"`
}

type createProductResponse struct {
	ID string `json:"id"`
}

// ProductRepository creates products with POST {baseURL}/api/v1/products.
type ProductRepository struct {
	client  HTTPDoer
	baseURL string
	token   string
	logger  *slog.Logger
}

// NewProductRepository creates an HTTP-backed product repository. token is
// sent as a bearer token when non-empty.
func NewProductRepository(client HTTPDoer, baseURL, token string, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		logger:  logger,
	}
}

// CreateProducts posts each product in order and stops at the first failure.
// Products created before the failure are not removed.
func (r *ProductRepository) CreateProducts(ctx context.Context, products []domain.Product) error {
	for i := range products {
		if err := r.createProduct(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProductRepository) createProduct(ctx context.Context, p *domain.Product) error {
	req := createProductRequest{
		Code:      p.Code,
		Name:      p.Name,
		Slug:      p.Slug,
		MainTaxon: p.MainTaxon,
		Archetype: p.Archetype,
		Taxons:    p.Taxons,
	}
	for _, av := range p.Attributes {
		req.Attributes = append(req.Attributes, productAttributeRequest{Attribute: av.Attribute, Value: av.Value})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal product %s: %w", p.Code, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/v1/products", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create product request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(ctx, httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", serviceName, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return httpclient.ParseResponseError(resp, serviceName)
	}
	defer resp.Body.Close()

	var created createProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return fmt.Errorf("decode create product response: %w", err)
	}
	p.ID = created.ID

	r.logger.DebugContext(ctx, "product created via api",
		slog.String("code", p.Code),
		slog.String("id", p.ID),
	)
	return nil
}
