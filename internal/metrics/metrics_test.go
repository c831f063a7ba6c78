package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/test", "200"))
	ObserveHTTP("GET", "/api/test", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/test", "200"))
	if after != before+1 {
		t.Fatalf("expected counter to increase by 1, got %v -> %v", before, after)
	}
}

func TestRecordImport(t *testing.T) {
	ok := ImportsTotal.WithLabelValues("test", "success")
	failed := ImportsTotal.WithLabelValues("test", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordImport("test", nil, time.Second)
	RecordImport("test", errors.New("boom"), time.Second)

	if testutil.ToFloat64(ok) != okBefore+1 || testutil.ToFloat64(failed) != failedBefore+1 {
		t.Fatalf("import outcomes not counted")
	}
}

func TestRecordDataset(t *testing.T) {
	at := time.Unix(1700000000, 0)
	RecordDataset(17379, at)
	if got := testutil.ToFloat64(DatasetRecords); got != 17379 {
		t.Fatalf("dataset records gauge = %v", got)
	}
	if got := testutil.ToFloat64(DatasetLoadedTimestamp); got != 1700000000 {
		t.Fatalf("dataset timestamp gauge = %v", got)
	}
}
