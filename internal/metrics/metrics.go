package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomsync_messages_sent_total",
			Help: "Total user sends entering the pipeline",
		},
	)

	DurableWriteRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomsync_durable_write_retries_total",
			Help: "Total durable write retry attempts",
		},
	)

	RepliesMerged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsync_replies_merged_total",
			Help: "Total responder replies merged into transcripts",
		},
		[]string{"attribution"}, // "attributed" or "unattributed"
	)

	Reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomsync_channel_reconnects_total",
			Help: "Total push channel reconnect attempts",
		},
	)

	DedupHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "roomsync_dedup_hits_total",
			Help: "Total duplicate channel deliveries suppressed",
		},
	)

	DroppedRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roomsync_dropped_records_total",
			Help: "Total records rejected by the store",
		},
		[]string{"reason"}, // "blank" or "invalid_shape"
	)
)
