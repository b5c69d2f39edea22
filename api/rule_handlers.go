package api

import (
	"context"
	"net/http"

	"lookout/core"
)

// ruleBasePath is the prefix of the index threshold rule editor routes
const ruleBasePath = "/api/rules/index_threshold"

type validateRuleInput struct {
	Body core.RuleParams `json:"body"`
}

// Validate applies defaults before checking, so the response echoes them
func (in *validateRuleInput) Validate() []string {
	in.Body.ApplyDefaults()
	return in.Body.Validate()
}

type fieldsRequest struct {
	IndexPatterns []string `json:"indexPatterns"`
}

type fieldsInput struct {
	Body fieldsRequest `json:"body"`
}

type indicesRequest struct {
	Pattern string `json:"pattern"`
}

type indicesInput struct {
	Body indicesRequest `json:"body"`
}

type timeSeriesInput struct {
	Body core.TimeSeriesParams `json:"body"`
}

func (in *timeSeriesInput) Validate() []string {
	in.Body.ApplyDefaults()
	return in.Body.Validate()
}

// validateRuleResponse echoes the rule parameters with defaults applied
type validateRuleResponse struct {
	Valid  bool            `json:"valid"`
	Params core.RuleParams `json:"params"`
}

func (a *API) registerRuleRoutes() {
	a.handle(ruleBasePath+"/_validate", route[validateRuleInput]{
		name:    "validate_rule",
		schema:  mustLoadRouteSchema("validate_rule.json"),
		handler: a.validateRule,
	}.serve(a), http.MethodPost)

	a.handle(ruleBasePath+"/_fields", route[fieldsInput]{
		name:    "rule_fields",
		schema:  mustLoadRouteSchema("fields.json"),
		handler: a.ruleFields,
	}.serve(a), http.MethodPost)

	a.handle(ruleBasePath+"/_indices", route[indicesInput]{
		name:    "rule_indices",
		schema:  mustLoadRouteSchema("indices.json"),
		handler: a.ruleIndices,
	}.serve(a), http.MethodPost)

	a.handle(ruleBasePath+"/_time_series_query", route[timeSeriesInput]{
		name:    "time_series_query",
		schema:  mustLoadRouteSchema("time_series_query.json"),
		handler: a.timeSeriesQuery,
	}.serve(a), http.MethodPost)
}

// validateRule godoc
//
//	@Summary		Validate index threshold rule parameters
//	@Description	Checks the rule parameters and echoes them with defaults applied
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		core.RuleParams	true	"Rule parameters"
//	@Success		200		{object}	validateRuleResponse
//	@Failure		400		{object}	errorBody	"Invalid rule parameters"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/rules/index_threshold/_validate [post]
func (a *API) validateRule(_ context.Context, in *validateRuleInput) (any, error) {
	return validateRuleResponse{Valid: true, Params: in.Body}, nil
}

// ruleFields never fails: a lookup error yields an empty list
//
//	@Summary		List rule fields
//	@Description	Returns the aggregatable and searchable fields of the index patterns
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		fieldsRequest	true	"Index patterns"
//	@Success		200		{object}	core.FieldsResult
//	@Failure		400		{object}	errorBody	"Invalid request"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/rules/index_threshold/_fields [post]
func (a *API) ruleFields(ctx context.Context, in *fieldsInput) (any, error) {
	return core.FieldsResult{Fields: a.services.Fields.Fields(ctx, in.Body.IndexPatterns)}, nil
}

// ruleIndices godoc
//
//	@Summary		Suggest indices
//	@Description	Returns index, alias and data stream names matching a pattern
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		indicesRequest	true	"Index name pattern"
//	@Success		200		{object}	core.IndicesResult
//	@Failure		400		{object}	errorBody	"Invalid request"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/rules/index_threshold/_indices [post]
func (a *API) ruleIndices(ctx context.Context, in *indicesInput) (any, error) {
	return core.IndicesResult{Indices: a.services.Indices.Indices(ctx, in.Body.Pattern)}, nil
}

// timeSeriesQuery godoc
//
//	@Summary		Preview rule time series
//	@Description	Runs the rule's aggregation over a date range and returns one series per group
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			request	body		core.TimeSeriesParams	true	"Time series query"
//	@Success		200		{object}	core.TimeSeriesResult
//	@Failure		400		{object}	errorBody	"Invalid query"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/rules/index_threshold/_time_series_query [post]
func (a *API) timeSeriesQuery(ctx context.Context, in *timeSeriesInput) (any, error) {
	return a.services.TimeSeries.Query(ctx, in.Body)
}
