// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus collectors for the posting
// pipeline and the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var TicksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_ticks_total",
	Help: "Number of pipeline ticks, by outcome",
}, []string{"outcome"})

var TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "replybot_tick_duration_seconds",
	Help:    "Duration of a full pipeline tick",
	Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
})

var CommentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_comments_total",
	Help: "Number of comment attempts, by status",
}, []string{"status"})

var PostDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "replybot_post_duration_seconds",
	Help:    "Latency of the posting collaborator",
	Buckets: prometheus.DefBuckets,
})

var RulesSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_rules_skipped_total",
	Help: "Number of rules skipped during a tick, by reason",
}, []string{"reason"})

var UnfilledVariables = promauto.NewCounter(prometheus.CounterOpts{
	Name: "replybot_unfilled_variables_total",
	Help: "Number of placeholders rendered without a value",
})

var AIReplies = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_ai_replies_total",
	Help: "Number of generated replies, by result",
}, []string{"result"})

var NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_notifications_total",
	Help: "Number of error notifications, by result",
}, []string{"result"})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_http_requests_total",
	Help: "Number of dashboard HTTP requests, by method, route and status",
}, []string{"method", "route", "status"})

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "replybot_http_request_duration_seconds",
	Help:    "Latency of dashboard HTTP requests, by route",
	Buckets: prometheus.DefBuckets,
}, []string{"route"})

var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Name: "replybot_http_rate_limited_total",
	Help: "Number of requests rejected by the rate limiter",
})

var PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "replybot_panics_recovered_total",
	Help: "Number of recovered panics, by location",
}, []string{"where"})
