package web

import (
	"net/http"

	"digital-library/library"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry      *prometheus.Registry
	logins        *prometheus.CounterVec
	registrations prometheus.Counter
	loansOpened   prometheus.Counter
	loansReturned prometheus.Counter
}

// newMetrics registers the library collectors on a private registry. The
// dashboard gauges are computed from mgr at scrape time.
func newMetrics(mgr *library.LibraryManager) *metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &metrics{
		registry: reg,
		logins: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		registrations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "registrations_total",
			Help:      "Accounts registered.",
		}),
		loansOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "loans_opened_total",
			Help:      "Loans recorded.",
		}),
		loansReturned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "library",
			Name:      "loans_returned_total",
			Help:      "Loans marked returned.",
		}),
	}

	gauge := func(name, help string, value func(library.DashboardStats) int) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "library",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(value(mgr.Stats())) })
	}
	gauge("books", "Books in the catalog.", func(s library.DashboardStats) int { return s.TotalBooks })
	gauge("active_loans", "Loans not yet returned.", func(s library.DashboardStats) int { return s.ActiveLoans })
	gauge("pending_returns", "Open loans due within the pending window.", func(s library.DashboardStats) int { return s.PendingReturns })
	gauge("overdue_loans", "Open loans past their due date.", func(s library.DashboardStats) int { return s.OverdueLoans })

	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
