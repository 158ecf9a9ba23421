package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var guildChecksRun = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erlcbot_guild_checks_total",
	Help: "Per-guild check executions, partitioned by pass and outcome",
}, []string{"pass", "outcome"})

var passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "erlcbot_pass_duration_seconds",
	Help:    "Wall time of one full pass over every eligible guild",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 14),
}, []string{"pass"})

var guildsInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "erlcbot_guilds_in_flight",
	Help: "Guild checks currently running",
}, []string{"pass"})

var playersClassified = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erlcbot_players_classified_total",
	Help: "Roster players classified by the discord check",
}, []string{"result"})

var commandsIssued = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erlcbot_game_commands_total",
	Help: "In-game commands sent, by verb",
}, []string{"verb"})

var vehicleAlerts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "erlcbot_vehicle_alerts_total",
	Help: "Staff alerts for repeated restricted vehicle use",
})

var loaTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erlcbot_loa_transitions_total",
	Help: "LOA records moved to a new state",
}, []string{"transition"})

var resolverHits = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "erlcbot_resolver_hits_total",
	Help: "Identity resolutions by the tier that matched",
}, []string{"tier"})
