package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfoOnce sync.Once

	// buildInfo is a constant 1 gauge labelled with version and commit.
	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "condoctl_build_info",
			Help: "condoctl build information.",
		},
		[]string{"version", "commit"},
	)
)

// InitBuildInfo registers build_info once on reg and sets the current labels.
func InitBuildInfo(reg prometheus.Registerer, version, commit string) {
	buildInfoOnce.Do(func() {
		if reg != nil {
			reg.MustRegister(buildInfo)
		}
	})
	buildInfo.WithLabelValues(version, commit).Set(1)
}
