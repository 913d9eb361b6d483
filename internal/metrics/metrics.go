package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch metrics
var (
	FetchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paintkit_fetch_attempts_total",
			Help: "Inventory fetch attempts against the backend",
		},
		[]string{"result"},
	)

	FetchDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paintkit_fetch_dropped_total",
			Help: "Fetch requests dropped because one was already in flight",
		},
	)

	FetchGaveUp = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paintkit_fetch_gave_up_total",
			Help: "Fetches abandoned after exhausting every retry",
		},
	)
)

// Application metrics
var (
	ItemsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paintkit_items_applied_total",
			Help: "Cosmetic items applied to live objects, by kind",
		},
		[]string{"kind"},
	)

	WearCollisions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paintkit_wear_collisions_total",
			Help: "Wear values bumped by the de-duplication cache",
		},
	)

	TickCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paintkit_tick_corrections_total",
			Help: "View-model mesh mask corrections applied on tick",
		},
	)
)

// Backend send metrics
var (
	StatTrakReports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paintkit_stattrak_reports_total",
			Help: "StatTrak increment reports sent to the backend",
		},
		[]string{"result"},
	)

	SignIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paintkit_sign_ins_total",
			Help: "Sign-in requests sent to the backend",
		},
		[]string{"result"},
	)
)

// Label values for the result dimension
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Item kinds for the applied counter
const (
	KindWeapon   = "weapon"
	KindKnife    = "knife"
	KindGlove    = "glove"
	KindAgent    = "agent"
	KindMusicKit = "musickit"
	KindGraffiti = "graffiti"
	KindPin      = "pin"
)
