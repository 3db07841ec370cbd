package services

import "github.com/prometheus/client_golang/prometheus"

// Domain counters. Labels are fixed small sets.
var (
	discussionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_discussions_created_total",
		Help: "Discussions created.",
	})

	commentsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_comments_created_total",
		Help: "Comments added to discussions.",
	})

	likeToggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "community_like_toggles_total",
		Help: "Like toggles by resulting state.",
	}, []string{"result"}) // liked|unliked

	discussionViews = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_discussion_views_total",
		Help: "Discussion detail views.",
	})

	presenceUpdates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "community_presence_updates_total",
		Help: "Presence updates by state and outcome.",
	}, []string{"state", "outcome"}) // online|offline, ok|error

	presenceExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "community_presence_expired_total",
		Help: "Members marked offline by the stale-presence sweeper.",
	})

	statsCache = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "community_stats_cache_total",
		Help: "Stats cache lookups by outcome.",
	}, []string{"outcome"}) // hit|miss|error
)

func init() {
	prometheus.MustRegister(
		discussionsCreated,
		commentsCreated,
		likeToggles,
		discussionViews,
		presenceUpdates,
		presenceExpired,
		statsCache,
	)
}
