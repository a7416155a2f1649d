package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every ChemHammer metric. A nil *AppMetrics is valid and
// records nothing.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	DistanceTotal    CounterVec
	DistanceDuration HistogramVec
	SolverPivots     HistogramVec

	SearchDuration      HistogramVec
	SearchCompounds     CounterVec
	SearchResultCount   HistogramVec
	CorpusSize          GaugeVec
	CorpusRowsSkipped   CounterVec
	MatrixBuildDuration HistogramVec
	MatrixSize          HistogramVec

	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	ErrorsTotal      CounterVec
}

var (
	DefaultHTTPDurationBuckets  = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultSolveDurationBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1}
	DefaultBatchDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300}
	DefaultPivotBuckets         = []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000}
	DefaultCountBuckets         = []float64{0, 1, 5, 10, 50, 100, 500, 1000}
)

// NewAppMetrics registers every metric on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.DistanceTotal = collector.RegisterCounter("distance_computations_total", "Distance computations by outcome", "outcome")
	m.DistanceDuration = collector.RegisterHistogram("distance_duration_seconds", "Single distance computation duration", DefaultSolveDurationBuckets, "path")
	m.SolverPivots = collector.RegisterHistogram("solver_pivots", "Network simplex pivots per solve", DefaultPivotBuckets)

	m.SearchDuration = collector.RegisterHistogram("search_duration_seconds", "Corpus search duration", DefaultBatchDurationBuckets)
	m.SearchCompounds = collector.RegisterCounter("search_compounds_total", "Corpus compounds compared")
	m.SearchResultCount = collector.RegisterHistogram("search_result_count", "Results returned per search", DefaultCountBuckets)
	m.CorpusSize = collector.RegisterGauge("corpus_compounds", "Compounds in the loaded corpus", "source")
	m.CorpusRowsSkipped = collector.RegisterCounter("corpus_rows_skipped_total", "Corpus rows skipped at load", "reason")
	m.MatrixBuildDuration = collector.RegisterHistogram("matrix_build_duration_seconds", "Pairwise matrix build duration", DefaultBatchDurationBuckets)
	m.MatrixSize = collector.RegisterHistogram("matrix_formulas", "Formulas per matrix build", DefaultCountBuckets)

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// RecordHTTPRequest records one served request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RequestStarted and RequestFinished track in-flight requests.
func (m *AppMetrics) RequestStarted(method string) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.WithLabelValues(method).Inc()
}

func (m *AppMetrics) RequestFinished(method string) {
	if m == nil {
		return
	}
	m.HTTPActiveRequests.WithLabelValues(method).Dec()
}

// RecordDistance records one solve. path is "simplex" or "closed".
func (m *AppMetrics) RecordDistance(path string, pivots int, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.DistanceTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		return
	}
	m.DistanceDuration.WithLabelValues(path).Observe(duration.Seconds())
	m.SolverPivots.WithLabelValues().Observe(float64(pivots))
}

// RecordSearch records one corpus search.
func (m *AppMetrics) RecordSearch(compared, results int, duration time.Duration) {
	if m == nil {
		return
	}
	m.SearchDuration.WithLabelValues().Observe(duration.Seconds())
	m.SearchCompounds.WithLabelValues().Add(float64(compared))
	m.SearchResultCount.WithLabelValues().Observe(float64(results))
}

// RecordCorpusLoad records the size of a freshly loaded corpus.
func (m *AppMetrics) RecordCorpusLoad(source string, loaded, skipped int) {
	if m == nil {
		return
	}
	m.CorpusSize.WithLabelValues(source).Set(float64(loaded))
	if skipped > 0 {
		m.CorpusRowsSkipped.WithLabelValues("unparseable").Add(float64(skipped))
	}
}

// RecordMatrixBuild records one pairwise matrix build.
func (m *AppMetrics) RecordMatrixBuild(formulas int, duration time.Duration) {
	if m == nil {
		return
	}
	m.MatrixBuildDuration.WithLabelValues().Observe(duration.Seconds())
	m.MatrixSize.WithLabelValues().Observe(float64(formulas))
}

// RecordCacheHit and RecordCacheMiss count cache lookups.
func (m *AppMetrics) RecordCacheHit(cache string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(cache).Inc()
}

func (m *AppMetrics) RecordCacheMiss(cache string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordError counts an error by component and code.
func (m *AppMetrics) RecordError(component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
