package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SectionsSubmitted  *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	ProfilesCompleted  prometheus.Counter
	TaxonomyEntries    *prometheus.CounterVec
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SectionsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kinship_sections_submitted_total",
			Help: "Profile sections successfully submitted, by section.",
		}, []string{"section"}),
		ValidationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kinship_validation_failures_total",
			Help: "Section submissions rejected by validation, by section.",
		}, []string{"section"}),
		ProfilesCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinship_profiles_completed_total",
			Help: "Members whose onboarding reached the completed step.",
		}),
		TaxonomyEntries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kinship_taxonomy_entries_created_total",
			Help: "Taxonomy entries created by operators, by type.",
		}, []string{"type"}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinship_taxonomy_cache_hits_total",
			Help: "Taxonomy dropdown reads served from cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinship_taxonomy_cache_misses_total",
			Help: "Taxonomy dropdown reads that fell through to the store.",
		}),
	}
}

// IncrementSectionSubmitted records a successful section submission.
func (m *Metrics) IncrementSectionSubmitted(section string) {
	if m == nil {
		return
	}
	m.SectionsSubmitted.WithLabelValues(section).Inc()
}

// IncrementValidationFailure records a rejected section submission.
func (m *Metrics) IncrementValidationFailure(section string) {
	if m == nil {
		return
	}
	m.ValidationFailures.WithLabelValues(section).Inc()
}

// IncrementProfilesCompleted records a member reaching the completed step.
func (m *Metrics) IncrementProfilesCompleted() {
	if m == nil {
		return
	}
	m.ProfilesCompleted.Inc()
}

// IncrementCacheHit records a taxonomy dropdown read served from cache.
func (m *Metrics) IncrementCacheHit() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementCacheMiss records a taxonomy dropdown read that missed the cache.
func (m *Metrics) IncrementCacheMiss() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// IncrementTaxonomyEntries records an operator-created taxonomy entry.
func (m *Metrics) IncrementTaxonomyEntries(entryType string) {
	if m == nil {
		return
	}
	m.TaxonomyEntries.WithLabelValues(entryType).Inc()
}
