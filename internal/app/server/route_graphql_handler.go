package server

import (
	"net/http"

	gqlhandler "github.com/graphql-go/handler"

	gqlschema "allowhost/internal/graphql"
)

func newGraphQLHandler(checker Checker, hosts HostStore) (http.Handler, error) {
	var counter gqlschema.HostCounter
	if hosts != nil {
		counter = hosts
	}

	schema, err := gqlschema.NewSchema(checker, counter)
	if err != nil {
		return nil, err
	}

	base := gqlhandler.New(&gqlhandler.Config{
		Schema:   &schema,
		Pretty:   true,
		GraphiQL: false,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base.ContextHandler(r.Context(), w, r)
	}), nil
}
