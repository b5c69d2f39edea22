package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"lookout/config"
	"lookout/metrics"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracerName is the instrumentation scope of storage spans
const tracerName = "lookout/storage"

// Elasticsearch holds the Elasticsearch client
type Elasticsearch struct {
	Client *elasticsearch.Client
	Logger *zap.SugaredLogger
	tracer trace.Tracer
}

// NewElasticsearch creates a new Elasticsearch client and verifies the cluster is reachable
func NewElasticsearch(cfg *config.Config, logger *zap.SugaredLogger) (*Elasticsearch, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.Elasticsearch.RequestTimeout
	transport.TLSClientConfig = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: cfg.Elasticsearch.InsecureSkipVerify, // #nosec G402 -- opt-in for dev clusters
	}

	if cfg.Elasticsearch.CACertFile != "" {
		pem, err := os.ReadFile(cfg.Elasticsearch.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read Elasticsearch CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.Elasticsearch.CACertFile)
		}
		transport.TLSClientConfig.RootCAs = pool
	}

	esCfg := elasticsearch.Config{
		Addresses:  cfg.Elasticsearch.Addresses,
		Username:   cfg.Elasticsearch.Username,
		Password:   cfg.Elasticsearch.Password,
		APIKey:     cfg.Elasticsearch.APIKey,
		CloudID:    cfg.Elasticsearch.CloudID,
		MaxRetries: cfg.Elasticsearch.MaxRetries,
		Transport:  transport,
	}
	if cfg.Elasticsearch.CloudID != "" {
		esCfg.Addresses = nil
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	es := &Elasticsearch{
		Client: client,
		Logger: logger,
		tracer: otel.Tracer(tracerName),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := es.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}

	logger.Infow("Connected to Elasticsearch", "addresses", esCfg.Addresses, "cloud", cfg.Elasticsearch.CloudID != "")
	return es, nil
}

// SetTracerProvider replaces the tracer used for Elasticsearch spans
func (es *Elasticsearch) SetTracerProvider(tp trace.TracerProvider) {
	es.tracer = tp.Tracer(tracerName)
}

// Ping checks that the cluster answers
func (es *Elasticsearch) Ping(ctx context.Context) error {
	_, err := es.perform(ctx, "ping", esapi.PingRequest{})
	return err
}

// perform runs one Elasticsearch request inside a client span and returns the
// response body. Status codes above 299 are returned as *ResponseError.
func (es *Elasticsearch) perform(ctx context.Context, operation string, req esapi.Request, attrs ...attribute.KeyValue) ([]byte, error) {
	ctx, span := es.tracer.Start(ctx, "elasticsearch."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("db.system", "elasticsearch"),
			attribute.String("db.operation", operation),
		}, attrs...)...),
	)
	defer span.End()

	start := time.Now()
	body, err := es.do(ctx, req)
	metrics.RecordElasticsearch(operation, err, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return body, err
	}
	return body, nil
}

func (es *Elasticsearch) do(ctx context.Context, req esapi.Request) ([]byte, error) {
	res, err := req.Do(ctx, es.Client)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read Elasticsearch response: %w", err)
	}
	if res.IsError() {
		return body, newResponseError(res.StatusCode, body)
	}
	return body, nil
}

// jsonBody encodes v as a request body
func jsonBody(v any) (io.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

func boolPtr(b bool) *bool {
	return &b
}

// searchHits is the part of a search response the clients read
type searchHits struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Index  string          `json:"_index"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func decodeSearchHits(body []byte) (*searchHits, error) {
	var hits searchHits
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	return &hits, nil
}
