package retrieval

import "github.com/policylens/backend/internal/storage/models"

// Config carries every tunable of the scoring engine. It is passed
// explicitly to constructors so tests can run different configurations
// side by side.
type Config struct {
	// Selection.
	TopN      int
	MinScore  float64
	OverFetch int

	// MaxBoost caps the combined boost product when > 0. Zero leaves
	// boosts uncapped.
	MaxBoost float64

	// Section-type multipliers.
	MetadataFactors map[models.SectionType]float64

	// Intent-alignment multipliers.
	DefinitionFactor float64
	CoverageFactor   float64
	ExclusionFactor  float64
	TimePeriodFactor float64
	LimitFactor      float64

	// Keyword density tiers.
	DensityHighThreshold float64
	DensityHighFactor    float64
	DensityMidThreshold  float64
	DensityMidFactor     float64

	// Exact phrase match.
	PhraseFactor float64

	// Numeric content on numeric-sensitive intents.
	NumericFactor float64
}

// DefaultConfig returns the production tuning.
func DefaultConfig() Config {
	return Config{
		TopN:      4,
		MinScore:  0.2,
		OverFetch: 15,
		MaxBoost:  0,
		MetadataFactors: map[models.SectionType]float64{
			models.SectionDefinition: 1.6,
			models.SectionCoverage:   1.4,
			models.SectionExclusion:  1.3,
			models.SectionClaims:     1.2,
			models.SectionOther:      1.0,
		},
		DefinitionFactor:     2.2,
		CoverageFactor:       1.8,
		ExclusionFactor:      1.9,
		TimePeriodFactor:     1.7,
		LimitFactor:          1.6,
		DensityHighThreshold: 0.8,
		DensityHighFactor:    1.4,
		DensityMidThreshold:  0.6,
		DensityMidFactor:     1.2,
		PhraseFactor:         1.3,
		NumericFactor:        1.2,
	}
}
