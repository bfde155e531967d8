package fetcher

import (
	"github.com/chainlake/chainlake/internal/metrics"
)

func recordFetchResult(res *Result) {
	metrics.BlocksFetched.Add(float64(len(res.Blocks)))
	metrics.LogsFetched.Add(float64(len(res.Logs)))
}

func recordNullBlock() {
	metrics.BlocksSkippedNull.Inc()
}

func recordLinkageError() {
	metrics.LinkageErrors.Inc()
}
