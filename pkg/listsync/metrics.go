package listsync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noUpdates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklist_updates_total",
		Help: "The total number of requested list updates",
	})
	noFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklist_update_failures_total",
		Help: "The total number of failed list updates",
	})
	noStale = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklist_stale_responses_total",
		Help: "The total number of list responses discarded because a newer list was shown",
	})
	noRestores = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklist_history_restores_total",
		Help: "The total number of lists restored from history without a request",
	})
	noHistoryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slasklist_history_failures_total",
		Help: "The total number of failed history writes",
	})
)
