package controllers

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/collection"
	gql "github.com/asadazo/asadazo/pkg/graphql"
)

// money resolves a decimal field as a float.
func money(get func(any) decimal.Decimal) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		return get(p.Source).InexactFloat64(), nil
	}
}

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"minPackKg":   &graphql.Field{Type: graphql.Float},
		"stock":       &graphql.Field{Type: graphql.Int},
		"category": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return string(p.Source.(models.Product).Category), nil
			},
		},
		"pricePerKg": &graphql.Field{
			Type:    graphql.Float,
			Resolve: money(func(s any) decimal.Decimal { return s.(models.Product).PricePerKg }),
		},
	},
})

var suggestionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Suggestion",
	Fields: graphql.Fields{
		"productId":   &graphql.Field{Type: graphql.String},
		"productName": &graphql.Field{Type: graphql.String},
		"weight":      &graphql.Field{Type: graphql.Float},
		"reason":      &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{
			Type:    graphql.Float,
			Resolve: money(func(s any) decimal.Decimal { return s.(services.Suggestion).Price }),
		},
	},
})

var suggestionsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Suggestions",
	Fields: graphql.Fields{
		"suggestions":  &graphql.Field{Type: graphql.NewList(suggestionType)},
		"totalWeight":  &graphql.Field{Type: graphql.Float},
		"targetWeight": &graphql.Field{Type: graphql.Float},
	},
})

var quoteType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DeliveryQuote",
	Fields: graphql.Fields{
		"zone":     &graphql.Field{Type: graphql.String},
		"subtotal": &graphql.Field{Type: graphql.Float},
		"fee":      &graphql.Field{Type: graphql.Float},
		"total":    &graphql.Field{Type: graphql.Float},
	},
})

// NewGraphQLHandler serves the read-only storefront schema: catalog,
// suggestions and delivery quotes.
func NewGraphQLHandler(suggestions *services.SuggestionService, pricing models.DeliveryPricing) (http.HandlerFunc, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"catalog": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"category":    &graphql.ArgumentConfig{Type: graphql.String},
					"inStockOnly": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					category, _ := p.Args["category"].(string)
					inStock, _ := p.Args["inStockOnly"].(bool)
					return collection.Filter(models.Catalog(), func(prod models.Product) bool {
						if category != "" && string(prod.Category) != category {
							return false
						}
						return !inStock || prod.InStock()
					}), nil
				},
			},
			"suggestions": &graphql.Field{
				Type: suggestionsType,
				Args: graphql.FieldConfigArgument{
					"type": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: models.Weekly},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					typ, _ := p.Args["type"].(string)
					return suggestions.Suggest(typ), nil
				},
			},
			"deliveryQuote": &graphql.Field{
				Type: quoteType,
				Args: graphql.FieldConfigArgument{
					"zone":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"subtotal": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					zone := models.DeliveryZone(p.Args["zone"].(string))
					subtotal := decimal.NewFromFloat(p.Args["subtotal"].(float64))
					fee, err := pricing.Fee(zone, subtotal)
					if err != nil {
						return nil, fmt.Errorf("deliveryQuote: %w", err)
					}
					return map[string]any{
						"zone":     string(zone),
						"subtotal": subtotal.InexactFloat64(),
						"fee":      fee.InexactFloat64(),
						"total":    subtotal.Add(fee).InexactFloat64(),
					}, nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(query)
	if err != nil {
		return nil, fmt.Errorf("graphql schema: %w", err)
	}
	return gql.Handler(schema), nil
}
