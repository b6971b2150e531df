package atlas

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/kalasangam/search-service/internal/query"
	"github.com/kalasangam/search-service/internal/ranking"
)

// searchIndexDefinition translates the declarative schema into an Atlas
// Search index definition. Text fields with an autocomplete sub-index get an
// edge-ngram mapping alongside the string mapping; facet fields get a
// stringFacet mapping so the filter UI can count values.
func searchIndexDefinition(schema query.IndexSchema) bson.M {
	fields := bson.M{}

	for _, f := range schema.Fields {
		switch f.Kind {
		case query.KindText:
			if f.HasAutocomplete {
				fields[f.Name] = bson.A{
					bson.M{"type": "string"},
					bson.M{
						"type":           "autocomplete",
						"minGrams":       query.AutocompleteMinGrams,
						"maxGrams":       query.AutocompleteMaxGrams,
						"foldDiacritics": query.FoldDiacritics,
					},
				}
			} else {
				fields[f.Name] = bson.M{"type": "string"}
			}
		case query.KindFacet:
			fields[f.Name] = bson.A{
				bson.M{"type": "string"},
				bson.M{"type": "stringFacet"},
			}
		case query.KindNumber:
			fields[f.Name] = bson.M{"type": "number"}
		case query.KindBoolean:
			fields[f.Name] = bson.M{"type": "boolean"}
		case query.KindDate:
			fields[f.Name] = bson.M{"type": "date"}
		case query.KindGeo:
			fields[f.Name] = bson.M{"type": "geo"}
		}
	}

	return bson.M{
		"mappings": bson.M{
			"dynamic": false,
			"fields":  fields,
		},
	}
}

// rankingScoreExpr compiles the ranking weights into an aggregation
// expression so the cluster orders results with the same formula the
// in-memory engine computes in Go. Absent numerics coalesce to zero.
func rankingScoreExpr() bson.M {
	return bson.M{"$add": bson.A{
		bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$featured", true}},
			ranking.WeightFeatured, 0,
		}},
		bson.M{"$multiply": bson.A{
			bson.M{"$ifNull": bson.A{"$rating", 0}},
			ranking.WeightRating,
		}},
		bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$available", true}},
			ranking.WeightAvailable, 0,
		}},
		bson.M{"$multiply": bson.A{
			bson.M{"$ifNull": bson.A{"$popularity", 0}},
			ranking.WeightPopularity,
		}},
		bson.M{"$multiply": bson.A{
			bson.M{"$ifNull": bson.A{"$experience_years", 0}},
			ranking.WeightExperience,
		}},
	}}
}
