package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lookout/core"
	"lookout/ecs"
	"lookout/metrics"
	"lookout/search"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnnotationClient manages annotation documents in a single index or alias
type AnnotationClient struct {
	es              *Elasticsearch
	index           string
	requiredLicense string
	license         *LicenseChecker
	logger          *zap.SugaredLogger
	now             func() time.Time

	indexMu    sync.Mutex
	indexReady bool
}

// NewAnnotationClient creates an annotation client. Writes require the cluster
// license to be at least requiredLicense.
func NewAnnotationClient(es *Elasticsearch, index, requiredLicense string, license *LicenseChecker, logger *zap.SugaredLogger) *AnnotationClient {
	if index == "" {
		index = core.DefaultAnnotationIndex
	}
	return &AnnotationClient{
		es:              es,
		index:           index,
		requiredLicense: requiredLicense,
		license:         license,
		logger:          logger,
		now:             time.Now,
	}
}

// Index returns the annotation index name
func (c *AnnotationClient) Index() string {
	return c.index
}

// Create stores a new annotation and returns it as read back from the index
func (c *AnnotationClient) Create(ctx context.Context, ann core.Annotation) (result *core.StoredAnnotation, err error) {
	defer func() { metrics.RecordAnnotationOperation("create", err) }()

	if err := c.ensureLicense(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureIndex(ctx); err != nil {
		return nil, err
	}

	ann.Prepare(c.now())
	body, err := jsonBody(ann)
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "index", esapi.IndexRequest{
		Index:   c.index,
		Body:    body,
		Refresh: "wait_for",
	}, attribute.String("db.elasticsearch.index", c.index))
	if err != nil {
		return nil, fmt.Errorf("failed to index annotation: %w", err)
	}

	written, err := decodeWriteResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debugw("Annotation created", "id", written.ID, "index", written.Index)
	return c.get(ctx, written.Index, written.ID)
}

// Update replaces an existing annotation. The document keeps its concrete index.
func (c *AnnotationClient) Update(ctx context.Context, id string, ann core.Annotation) (result *core.StoredAnnotation, err error) {
	defer func() { metrics.RecordAnnotationOperation("update", err) }()

	if err := c.ensureLicense(ctx); err != nil {
		return nil, err
	}
	if err := c.ensureIndex(ctx); err != nil {
		return nil, err
	}

	existing, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ann.PrepareUpdate(c.now())
	if existing.Source.Event != nil && existing.Source.Event.Created != nil {
		ann.Event.Created = existing.Source.Event.Created
	}

	body, err := jsonBody(ann)
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "index", esapi.IndexRequest{
		Index:      existing.Index,
		DocumentID: id,
		Body:       body,
		Refresh:    "wait_for",
	}, attribute.String("db.elasticsearch.index", existing.Index))
	if err != nil {
		return nil, fmt.Errorf("failed to update annotation %s: %w", id, err)
	}

	written, err := decodeWriteResponse(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debugw("Annotation updated", "id", written.ID, "index", written.Index)
	return c.get(ctx, written.Index, written.ID)
}

// GetByID returns the annotation with the given id from any index behind the alias
func (c *AnnotationClient) GetByID(ctx context.Context, id string) (*core.StoredAnnotation, error) {
	body, err := jsonBody(search.BuildGetAnnotationQuery(id))
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "search", esapi.SearchRequest{
		Index:             []string{c.index},
		Body:              body,
		IgnoreUnavailable: boolPtr(true),
	}, attribute.String("db.elasticsearch.index", c.index))
	if err != nil {
		return nil, fmt.Errorf("failed to get annotation %s: %w", id, err)
	}

	hits, err := decodeSearchHits(resp)
	if err != nil {
		return nil, err
	}
	if len(hits.Hits.Hits) == 0 {
		return nil, core.NotFound(fmt.Sprintf("Annotation with id %s not found", id), ErrAnnotationNotFound)
	}

	hit := hits.Hits.Hits[0]
	stored := &core.StoredAnnotation{ID: hit.ID, Index: hit.Index}
	if err := json.Unmarshal(hit.Source, &stored.Source); err != nil {
		return nil, fmt.Errorf("%w: annotation %s: %v", ErrUnexpectedResponse, id, err)
	}
	return stored, nil
}

// Delete removes the annotation with the given id and returns the delete_by_query response
func (c *AnnotationClient) Delete(ctx context.Context, id string) (result map[string]any, err error) {
	defer func() { metrics.RecordAnnotationOperation("delete", err) }()

	if err := c.ensureLicense(ctx); err != nil {
		return nil, err
	}

	body, err := jsonBody(search.BuildDeleteAnnotationQuery(id))
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "delete_by_query", esapi.DeleteByQueryRequest{
		Index:   []string{c.index},
		Body:    body,
		Refresh: boolPtr(true),
	}, attribute.String("db.elasticsearch.index", c.index))
	if err != nil {
		return nil, fmt.Errorf("failed to delete annotation %s: %w", id, err)
	}

	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	c.logger.Debugw("Annotation deleted", "id", id, "deleted", result["deleted"])
	return result, nil
}

// Find returns the annotations matching params, newest first
func (c *AnnotationClient) Find(ctx context.Context, params core.FindParams) (*core.FindResult, error) {
	query, err := search.BuildFindAnnotationsQuery(params)
	if err != nil {
		return nil, err
	}
	body, err := jsonBody(query)
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "search", esapi.SearchRequest{
		Index:             []string{c.index},
		Body:              body,
		IgnoreUnavailable: boolPtr(true),
		AllowNoIndices:    boolPtr(true),
	}, attribute.String("db.elasticsearch.index", c.index))
	if err != nil {
		return nil, fmt.Errorf("failed to find annotations: %w", err)
	}

	hits, err := decodeSearchHits(resp)
	if err != nil {
		return nil, err
	}

	result := &core.FindResult{
		Items: make([]core.FoundAnnotation, 0, len(hits.Hits.Hits)),
		Total: hits.Hits.Total.Value,
	}
	for _, hit := range hits.Hits.Hits {
		item := core.FoundAnnotation{ID: hit.ID}
		if err := json.Unmarshal(hit.Source, &item.Annotation); err != nil {
			c.logger.Warnw("Skipping unreadable annotation", "id", hit.ID, "error", err)
			continue
		}
		result.Items = append(result.Items, item)
	}
	return result, nil
}

// Permissions reports whether the current user may read and write the
// annotation index, and whether the license allows writes at all
func (c *AnnotationClient) Permissions(ctx context.Context) (*core.AnnotationPermissions, error) {
	perms := &core.AnnotationPermissions{Index: c.index}

	switch err := c.license.Require(ctx, c.requiredLicense); {
	case err == nil:
		perms.HasGoldLicense = true
	case errors.Is(err, ErrLicenseInsufficient), errors.Is(err, ErrLicenseInactive):
	default:
		return nil, err
	}

	body, err := jsonBody(map[string]any{
		"index": []map[string]any{{
			"names":      []string{c.index},
			"privileges": []string{"read", "write"},
		}},
	})
	if err != nil {
		return nil, err
	}

	resp, err := c.es.perform(ctx, "has_privileges", esapi.SecurityHasPrivilegesRequest{Body: body})
	if err != nil {
		return nil, fmt.Errorf("failed to check annotation index privileges: %w", err)
	}

	var privileges struct {
		Index map[string]map[string]bool `json:"index"`
	}
	if err := json.Unmarshal(resp, &privileges); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	perms.Read = privileges.Index[c.index]["read"]
	perms.Write = privileges.Index[c.index]["write"]
	return perms, nil
}

// ensureLicense turns a license shortfall into a 403
func (c *AnnotationClient) ensureLicense(ctx context.Context) error {
	err := c.license.Require(ctx, c.requiredLicense)
	if errors.Is(err, ErrLicenseInsufficient) || errors.Is(err, ErrLicenseInactive) {
		msg := fmt.Sprintf("Annotations require at least a %s license or a trial license.", c.requiredLicense)
		return core.Forbidden(msg, err)
	}
	return err
}

// ensureIndex creates the annotation index on first write. A concurrent
// creator winning the race is not an error.
func (c *AnnotationClient) ensureIndex(ctx context.Context) error {
	c.indexMu.Lock()
	defer c.indexMu.Unlock()

	if c.indexReady {
		return nil
	}

	_, err := c.es.perform(ctx, "indices.exists", esapi.IndicesExistsRequest{Index: []string{c.index}})
	switch {
	case err == nil:
		c.indexReady = true
		return nil
	case !IsNotFound(err):
		return fmt.Errorf("failed to check annotation index: %w", err)
	}

	body, err := jsonBody(map[string]any{"mappings": ecs.AnnotationMappings()})
	if err != nil {
		return err
	}

	_, err = c.es.perform(ctx, "indices.create", esapi.IndicesCreateRequest{Index: c.index, Body: body})
	if err != nil && !isAlreadyExists(err) {
		return fmt.Errorf("failed to create annotation index %s: %w", c.index, err)
	}

	c.logger.Infow("Annotation index ready", "index", c.index, "created", err == nil)
	c.indexReady = true
	return nil
}

// get reads one document from a concrete index
func (c *AnnotationClient) get(ctx context.Context, index, id string) (*core.StoredAnnotation, error) {
	resp, err := c.es.perform(ctx, "get", esapi.GetRequest{Index: index, DocumentID: id})
	if err != nil {
		if IsNotFound(err) {
			return nil, core.NotFound(fmt.Sprintf("Annotation with id %s not found", id), ErrAnnotationNotFound)
		}
		return nil, fmt.Errorf("failed to read annotation %s: %w", id, err)
	}

	var doc struct {
		ID     string          `json:"_id"`
		Index  string          `json:"_index"`
		Source core.Annotation `json:"_source"`
	}
	if err := json.Unmarshal(resp, &doc); err != nil {
		return nil, fmt.Errorf("%w: annotation %s: %v", ErrUnexpectedResponse, id, err)
	}
	return &core.StoredAnnotation{ID: doc.ID, Index: doc.Index, Source: doc.Source}, nil
}

// writeResponse is the part of an index response the client reads
type writeResponse struct {
	ID     string `json:"_id"`
	Index  string `json:"_index"`
	Result string `json:"result"`
}

func decodeWriteResponse(body []byte) (*writeResponse, error) {
	var resp writeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("%w: index response has no _id", ErrUnexpectedResponse)
	}
	return &resp, nil
}
