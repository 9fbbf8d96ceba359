package models

import "time"

// SectionType classifies the part of a policy document a chunk came from.
// It is assigned once during document processing and never changes.
type SectionType string

const (
	SectionDefinition SectionType = "definition"
	SectionCoverage   SectionType = "coverage"
	SectionExclusion  SectionType = "exclusion"
	SectionClaims     SectionType = "claims"
	SectionOther      SectionType = "other"
)

// ChunkMetadata carries the retrieval signals extracted while chunking.
type ChunkMetadata struct {
	SectionType    SectionType
	Section        string
	ChunkIndex     int
	WordCount      int
	HasNumbers     bool
	HasDefinitions bool
	IsHeading      bool
}

// Chunk is the unit of retrieval: a bounded span of policy text with
// its embedding and metadata.
type Chunk struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  ChunkMetadata
}

// DocumentRecord tracks a processed policy document.
type DocumentRecord struct {
	ID          string
	URL         string
	Title       string
	ChunkCount  int
	ProcessedAt time.Time
}

// QuestionRecord is one answered question in the history store.
type QuestionRecord struct {
	ID                  string
	DocID               string
	Question            string
	Answer              string
	Intent              string
	CandidatesRetrieved int
	CandidatesSelected  int
	LatencyMS           int
	CreatedAt           time.Time
}
