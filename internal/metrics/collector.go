package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Selection metrics
	TestsCollected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "testsel_tests_collected_total",
			Help: "Total test cases offered to the selector",
		},
	)
	TestsSelected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "testsel_tests_selected_total",
			Help: "Total test cases matched by the active selection",
		},
	)
	TestsDeselected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "testsel_tests_deselected_total",
			Help: "Total test cases rejected by the active selection",
		},
	)

	// Marker validation metrics
	UnknownMarkers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testsel_unknown_markers_total",
			Help: "Unknown markers seen in test declarations, by policy outcome",
		},
		[]string{"policy"},
	)

	// Logging metrics
	LogRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testsel_log_records_total",
			Help: "Log records written, by sink and level",
		},
		[]string{"sink", "level"},
	)
	Warnings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testsel_warnings_total",
			Help: "Runtime warnings, by filter action",
		},
		[]string{"action"},
	)

	// Run outcome metrics
	TestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "testsel_test_outcomes_total",
			Help: "Reported test outcomes",
		},
		[]string{"outcome"},
	)
)

// WriteTextfile dumps the default registry in text exposition format, for
// node_exporter's textfile collector.
// WriteTextfile 以文本格式导出默认注册表，供 node_exporter textfile 收集器使用。
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
