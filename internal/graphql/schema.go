package graphql

import (
	"context"
	"errors"

	gql "github.com/graphql-go/graphql"

	"allowhost/internal/domain"
)

// Checker evaluates a raw hostname query.
type Checker interface {
	Evaluate(ctx context.Context, raw string) (domain.CheckResult, error)
}

// HostCounter reports the size of the allow-list.
type HostCounter interface {
	CountHosts(ctx context.Context) (int64, error)
}

func NewSchema(checker Checker, hosts HostCounter) (gql.Schema, error) {
	if checker == nil {
		return gql.Schema{}, errors.New("graphql: checker is required")
	}

	modeType := gql.NewEnum(gql.EnumConfig{
		Name: "CheckMode",
		Values: gql.EnumValueConfigMap{
			"INVALID":  &gql.EnumValueConfig{Value: domain.ModeInvalid},
			"EXACT":    &gql.EnumValueConfig{Value: domain.ModeExact},
			"WILDCARD": &gql.EnumValueConfig{Value: domain.ModeWildcard},
		},
	})

	checkResultType := gql.NewObject(gql.ObjectConfig{
		Name: "CheckResult",
		Fields: gql.Fields{
			"allowed":    &gql.Field{Type: gql.NewNonNull(gql.Boolean)},
			"mode":       &gql.Field{Type: gql.NewNonNull(modeType)},
			"matchCount": &gql.Field{Type: gql.NewNonNull(gql.Int)},
			"matches":    &gql.Field{Type: gql.NewNonNull(gql.NewList(gql.NewNonNull(gql.String)))},
			"reason":     &gql.Field{Type: gql.NewNonNull(gql.String)},
		},
	})

	queryType := gql.NewObject(gql.ObjectConfig{
		Name: "Query",
		Fields: gql.Fields{
			"check": &gql.Field{
				Type: gql.NewNonNull(checkResultType),
				Args: gql.FieldConfigArgument{
					"hostname": &gql.ArgumentConfig{Type: gql.NewNonNull(gql.String)},
				},
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					raw, _ := p.Args["hostname"].(string)
					result, err := checker.Evaluate(contextOf(p), raw)
					if err != nil {
						return nil, err
					}
					return checkResultFields(result), nil
				},
			},
			"hostCount": &gql.Field{
				Type: gql.NewNonNull(gql.Int),
				Resolve: func(p gql.ResolveParams) (interface{}, error) {
					if hosts == nil {
						return nil, errors.New("graphql: host count unavailable")
					}
					count, err := hosts.CountHosts(contextOf(p))
					if err != nil {
						return nil, err
					}
					return int(count), nil
				},
			},
		},
	})

	return gql.NewSchema(gql.SchemaConfig{Query: queryType})
}

func contextOf(p gql.ResolveParams) context.Context {
	if p.Context != nil {
		return p.Context
	}
	return context.Background()
}

func checkResultFields(r domain.CheckResult) map[string]interface{} {
	matches := r.Matches
	if matches == nil {
		matches = []string{}
	}
	return map[string]interface{}{
		"allowed":    r.Allowed,
		"mode":       r.Mode,
		"matchCount": r.MatchCount,
		"matches":    matches,
		"reason":     r.Reason,
	}
}
