package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolverRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nba_resolver_records_total",
		Help: "Pending records examined by the resolver, by result",
	}, []string{"result", "reason"})

	staleRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nba_resolver_stale_records",
		Help: "Due records older than the staleness threshold after the last resolve",
	})

	generatorMatchupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nba_generator_matchups_total",
		Help: "Matchups seen by the generator, by result",
	}, []string{"result", "reason"})

	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nba_predictions_total",
		Help: "Single-match predictions computed, by outcome",
	}, []string{"outcome"})

	cycleRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nba_cycle_rejected_total",
		Help: "Cycle runs refused because another run was in progress",
	})
)
