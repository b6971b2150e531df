// Package ranking computes the default presentation order for search
// results. The weighted formula is a contract shared with the marketplace
// frontend: reordering expectations in listing pages and dashboards are built
// against these exact weights, so they must not drift.
package ranking

import (
	"sort"

	"github.com/kalasangam/search-service/internal/domain"
)

// Score weights. Featured dominates every organic signal: a single featured
// flag outweighs a perfect rating plus heavy popularity. One rating star is
// worth 20 bookings or 40 years of experience; availability is a fixed nudge
// of a quarter star.
const (
	WeightFeatured   = 1000
	WeightRating     = 200
	WeightAvailable  = 50
	WeightPopularity = 10
	WeightExperience = 5
)

// Inputs are the ranking-relevant attributes of a document. Zero values
// stand in for absent fields, so a record with nothing but an identity still
// scores cleanly (to zero).
type Inputs struct {
	Featured        bool
	Rating          float64
	Available       bool
	Popularity      int
	ExperienceYears int
}

// InputsOf extracts the ranking attributes from a document.
func InputsOf(doc *domain.Document) Inputs {
	return Inputs{
		Featured:        doc.Featured,
		Rating:          doc.Rating,
		Available:       doc.Available,
		Popularity:      doc.Popularity,
		ExperienceYears: doc.ExperienceYears,
	}
}

// Score returns the weighted ranking score for the given attributes. Higher
// is better. The function is pure and never fails; ties between equal scores
// are the caller's problem (see SortDocuments).
func Score(in Inputs) float64 {
	var score float64
	if in.Featured {
		score += WeightFeatured
	}
	score += in.Rating * WeightRating
	if in.Available {
		score += WeightAvailable
	}
	score += float64(in.Popularity) * WeightPopularity
	score += float64(in.ExperienceYears) * WeightExperience
	return score
}

// SortDocuments orders documents by descending score. Equal scores fall back
// to ascending ID so paginated output is stable across calls.
func SortDocuments(docs []domain.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		si, sj := Score(InputsOf(&docs[i])), Score(InputsOf(&docs[j]))
		if si != sj {
			return si > sj
		}
		return docs[i].ID < docs[j].ID
	})
}
