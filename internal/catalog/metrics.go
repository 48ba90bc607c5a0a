package catalog

import "github.com/prometheus/client_golang/prometheus"

type Metrics struct {
	Created prometheus.Counter
}

// NewMetrics registers catalog counters on reg. When sized is non-nil a gauge
// reporting the number of stored products is registered as well.
func NewMetrics(reg prometheus.Registerer, sized interface{ Len() int }) *Metrics {
	m := &Metrics{
		Created: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "products_created_total",
			Help:      "Products successfully created",
		}),
	}
	reg.MustRegister(m.Created)

	if sized != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "catalog",
			Name:      "products_stored",
			Help:      "Products currently held by the store",
		}, func() float64 { return float64(sized.Len()) }))
	}
	return m
}

func (m *Metrics) productCreated() {
	if m == nil {
		return
	}
	m.Created.Inc()
}
