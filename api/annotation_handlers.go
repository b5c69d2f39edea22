package api

import (
	"context"
	"net/http"

	"lookout/core"
)

// annotationBasePath is the prefix of the annotation routes
const annotationBasePath = "/api/observability/annotation"

// idParams are the path parameters of routes addressing one annotation
type idParams struct {
	ID string `json:"id" validate:"required"`
}

type createAnnotationInput struct {
	Body core.Annotation `json:"body"`
}

func (in *createAnnotationInput) Validate() []string {
	return rangeProblems(&in.Body)
}

type updateAnnotationInput struct {
	Params idParams        `json:"params"`
	Body   core.Annotation `json:"body"`
}

func (in *updateAnnotationInput) Validate() []string {
	return rangeProblems(&in.Body)
}

type annotationByIDInput struct {
	Params idParams `json:"params"`
}

type findAnnotationsInput struct {
	Query core.FindParams `json:"query"`
}

type emptyInput struct{}

// rangeProblems reports an event range that ends before it starts
func rangeProblems(ann *core.Annotation) []string {
	if err := ann.ValidateRange(); err != nil {
		return []string{core.MessageOf(err)}
	}
	return nil
}

// registerAnnotationRoutes registers the annotation CRUD routes. The fixed
// paths come before /{id} so that "find" and "permissions" are not read as ids.
func (a *API) registerAnnotationRoutes() {
	a.handle(annotationBasePath, route[createAnnotationInput]{
		name:    "create_annotation",
		schema:  mustLoadRouteSchema("create_annotation.json"),
		handler: a.createAnnotation,
	}.serve(a), http.MethodPost)

	a.handle(annotationBasePath+"/find", route[findAnnotationsInput]{
		name:    "find_annotations",
		schema:  mustLoadRouteSchema("find_annotations.json"),
		handler: a.findAnnotations,
	}.serve(a), http.MethodGet)

	a.handle(annotationBasePath+"/permissions", route[emptyInput]{
		name:    "annotation_permissions",
		schema:  mustLoadRouteSchema("empty.json"),
		handler: a.annotationPermissions,
	}.serve(a), http.MethodGet)

	a.handle(annotationBasePath+"/{id}", route[updateAnnotationInput]{
		name:    "update_annotation",
		schema:  mustLoadRouteSchema("update_annotation.json"),
		handler: a.updateAnnotation,
	}.serve(a), http.MethodPut)

	a.handle(annotationBasePath+"/{id}", route[annotationByIDInput]{
		name:    "delete_annotation",
		schema:  mustLoadRouteSchema("annotation_by_id.json"),
		handler: a.deleteAnnotation,
	}.serve(a), http.MethodDelete)

	a.handle(annotationBasePath+"/{id}", route[annotationByIDInput]{
		name:    "get_annotation",
		schema:  mustLoadRouteSchema("annotation_by_id.json"),
		handler: a.getAnnotation,
	}.serve(a), http.MethodGet)
}

// createAnnotation godoc
//
//	@Summary		Create annotation
//	@Description	Indexes a new annotation, creating the annotation index on first use
//	@Tags			annotations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		core.Annotation	true	"Annotation"
//	@Success		200		{object}	core.StoredAnnotation
//	@Failure		400		{object}	errorBody	"Invalid annotation"
//	@Failure		500		{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation [post]
func (a *API) createAnnotation(ctx context.Context, in *createAnnotationInput) (any, error) {
	return a.services.Annotations.Create(ctx, in.Body)
}

// updateAnnotation godoc
//
//	@Summary		Update annotation
//	@Description	Replaces the annotation stored under id
//	@Tags			annotations
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Annotation ID"
//	@Param			request	body		core.Annotation	true	"Annotation"
//	@Success		200		{object}	core.StoredAnnotation
//	@Failure		400		{object}	errorBody	"Invalid annotation"
//	@Failure		404		{object}	errorBody	"Annotation not found"
//	@Failure		500		{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation/{id} [put]
func (a *API) updateAnnotation(ctx context.Context, in *updateAnnotationInput) (any, error) {
	return a.services.Annotations.Update(ctx, in.Params.ID, in.Body)
}

// deleteAnnotation godoc
//
//	@Summary		Delete annotation
//	@Tags			annotations
//	@Produce		json
//	@Param			id	path		string	true	"Annotation ID"
//	@Success		200	{object}	map[string]any	"Elasticsearch delete result"
//	@Failure		404	{object}	errorBody		"Annotation not found"
//	@Failure		500	{object}	errorBody		"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation/{id} [delete]
func (a *API) deleteAnnotation(ctx context.Context, in *annotationByIDInput) (any, error) {
	return a.services.Annotations.Delete(ctx, in.Params.ID)
}

// getAnnotation godoc
//
//	@Summary		Get annotation by ID
//	@Tags			annotations
//	@Produce		json
//	@Param			id	path		string	true	"Annotation ID"
//	@Success		200	{object}	core.StoredAnnotation
//	@Failure		404	{object}	errorBody	"Annotation not found"
//	@Failure		500	{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation/{id} [get]
func (a *API) getAnnotation(ctx context.Context, in *annotationByIDInput) (any, error) {
	return a.services.Annotations.GetByID(ctx, in.Params.ID)
}

// findAnnotations godoc
//
//	@Summary		Find annotations
//	@Description	Lists annotations overlapping a time range, optionally narrowed to an SLO or service.
//	@Description	A missing annotation index yields an empty result.
//	@Tags			annotations
//	@Produce		json
//	@Param			start			query		string	false	"Range start (date math)"	default(now-30d)
//	@Param			end				query		string	false	"Range end (date math)"		default(now)
//	@Param			sloId			query		string	false	"SLO ID"
//	@Param			sloInstanceId	query		string	false	"SLO instance ID"
//	@Param			serviceName		query		string	false	"Service name"
//	@Param			filter			query		string	false	"Additional query DSL as JSON"
//	@Param			size			query		int		false	"Maximum results"	default(10000)
//	@Success		200				{object}	core.FindResult
//	@Failure		400				{object}	errorBody	"Invalid query"
//	@Failure		500				{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation/find [get]
func (a *API) findAnnotations(ctx context.Context, in *findAnnotationsInput) (any, error) {
	return a.services.Annotations.Find(ctx, in.Query.WithDefaults())
}

// annotationPermissions godoc
//
//	@Summary		Annotation permissions
//	@Description	Reports the caller's read and write privileges on the annotation index and the license level
//	@Tags			annotations
//	@Produce		json
//	@Success		200	{object}	core.AnnotationPermissions
//	@Failure		500	{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/observability/annotation/permissions [get]
func (a *API) annotationPermissions(ctx context.Context, _ *emptyInput) (any, error) {
	return a.services.Annotations.Permissions(ctx)
}
