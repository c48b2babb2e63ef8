// Package metrics exposes Prometheus instrumentation for the scheduler and
// the notification pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchedulerTicks counts scheduler tick runs.
	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_scheduler_ticks_total",
		Help: "Number of scheduler ticks executed.",
	})

	// SchedulerTaskErrors counts failed scheduler tasks by task name.
	SchedulerTaskErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_scheduler_task_errors_total",
		Help: "Number of scheduler task failures.",
	}, []string{"task"})

	// RemindersDelivered counts reminders handed to the dispatcher by kind
	// (event, location, announcement).
	RemindersDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wayfarer_reminders_delivered_total",
		Help: "Number of reminders delivered, by kind.",
	}, []string{"kind"})

	// PushDelivered counts successful web push deliveries.
	PushDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_push_delivered_total",
		Help: "Number of successful web push deliveries.",
	})

	// PushFailures counts failed web push deliveries (bad tokens and
	// transport errors alike).
	PushFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_push_failures_total",
		Help: "Number of failed web push deliveries.",
	})

	// SocketBroadcasts counts room broadcasts attempted.
	SocketBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wayfarer_socket_broadcasts_total",
		Help: "Number of realtime room broadcasts attempted.",
	})
)
