package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

var Module = fx.Module("observability.metrics",
	fx.Provide(func() *HTTPMetrics { return NewHTTPMetrics(prometheus.DefaultRegisterer) }),
	fx.Provide(func() *GroupMetrics { return NewGroupMetrics(prometheus.DefaultRegisterer) }),
)
