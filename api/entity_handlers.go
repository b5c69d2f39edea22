package api

import (
	"context"
	"net/http"

	"lookout/core"
)

type entityListInput struct {
	Query core.EntityListParams `json:"query"`
}

func (in *entityListInput) Validate() []string {
	if err := in.Query.WithDefaults().ValidateWindow(); err != nil {
		return []string{core.MessageOf(err)}
	}
	return nil
}

func (a *API) registerEntityRoutes() {
	a.handle("/api/entity_store/entities/list", route[entityListInput]{
		name:    "list_entities",
		schema:  mustLoadRouteSchema("entity_list.json"),
		handler: a.listEntities,
	}.serve(a), http.MethodGet)
}

// listEntities godoc
//
//	@Summary		List entities
//	@Description	Pages through the entity store indices for the requested entity types
//	@Tags			entities
//	@Produce		json
//	@Param			entityTypes	query		[]string	true	"Entity types"	collectionFormat(multi)	Enums(host, user, service)
//	@Param			criticality	query		[]string	false	"Asset criticality levels"	collectionFormat(multi)
//	@Param			sources		query		[]string	false	"Entity sources"	collectionFormat(multi)
//	@Param			severity	query		[]string	false	"Risk severities"	collectionFormat(multi)
//	@Param			filterQuery	query		string		false	"Query DSL as JSON"
//	@Param			sortField	query		string		false	"Sort field"
//	@Param			sortOrder	query		string		false	"Sort order"	Enums(asc, desc)
//	@Param			page		query		int			false	"Page number"	default(1)
//	@Param			per_page	query		int			false	"Page size"		default(10)	maximum(10000)
//	@Param			namespace	query		string		false	"Space namespace"
//	@Success		200			{object}	core.EntityListResult
//	@Failure		400			{object}	errorBody	"Invalid query or page past the result window"
//	@Failure		500			{object}	errorBody	"Internal server error"
//	@Security		BasicAuth
//	@Security		BearerAuth
//	@Router			/api/entity_store/entities/list [get]
func (a *API) listEntities(ctx context.Context, in *entityListInput) (any, error) {
	return a.services.Entities.List(ctx, in.Query)
}
