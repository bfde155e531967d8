package decode

import "github.com/chainlake/chainlake/internal/metrics"

func recordDecoded(protocol string, count int) {
	metrics.LogsDecodedAdd(protocol, count)
}

func recordSkipped(protocol string) {
	metrics.LogsDecodeSkippedInc(protocol)
}
