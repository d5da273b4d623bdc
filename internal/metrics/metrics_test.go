package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	require.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestProviderAttemptsTotal_Labels(t *testing.T) {
	before := testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("metrics-test", ResultHTTPError))
	ProviderAttemptsTotal.WithLabelValues("metrics-test", ResultHTTPError).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("metrics-test", ResultHTTPError)))
}
