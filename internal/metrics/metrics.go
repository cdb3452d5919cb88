// Package metrics exposes operational counters for the assistant.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// TurnsTotal counts processed turns by outcome: shortcut, completion,
// fallback, rate_limited or invalid.
var TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "assistant",
	Name:      "chat_turns_total",
	Help:      "Chat turns processed, labelled by how the reply was produced.",
}, []string{"outcome"})
