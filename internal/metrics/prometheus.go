package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuestionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policylens_question_duration_seconds",
			Help:    "Question answering duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
		[]string{"intent"},
	)

	QuestionTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policylens_question_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)

	IntentClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policylens_intent_classified_total",
			Help: "Questions classified per intent",
		},
		[]string{"intent"},
	)

	CandidatesRetrieved = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policylens_candidates_retrieved",
			Help:    "Number of candidates returned by vector search per question",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 20},
		},
	)

	CandidatesSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policylens_candidates_selected",
			Help:    "Number of candidates surviving score threshold and top-N cut",
			Buckets: []float64{0, 1, 2, 3, 4, 5},
		},
	)

	FinalScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policylens_final_score",
			Help:    "Final scores of selected candidates",
			Buckets: []float64{0.2, 0.4, 0.6, 0.8, 1.0, 1.5, 2.0, 3.0, 5.0},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policylens_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policylens_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policylens_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	DocumentsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "policylens_documents_processed_total",
			Help: "Total documents downloaded and indexed",
		},
	)

	DocumentChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "policylens_document_chunks",
			Help:    "Number of chunks produced per document",
			Buckets: []float64{10, 50, 100, 250, 500, 1000},
		},
	)
)

func Init() {
	prometheus.MustRegister(QuestionDuration)
	prometheus.MustRegister(QuestionTotal)
	prometheus.MustRegister(IntentClassified)
	prometheus.MustRegister(CandidatesRetrieved)
	prometheus.MustRegister(CandidatesSelected)
	prometheus.MustRegister(FinalScore)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(DocumentsProcessed)
	prometheus.MustRegister(DocumentChunks)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
