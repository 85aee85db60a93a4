// internal/core/usecases/orchestrator_test.go
package usecases

import (
	"context"
	"testing"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/netguard"
	"exposechain/internal/platform/rate"
	"exposechain/internal/testutil"
)

func asPorts(mocks map[domain.SourceKind]*mockSource) map[domain.SourceKind]ports.Source {
	out := make(map[domain.SourceKind]ports.Source, len(mocks))
	for k, m := range mocks {
		out[k] = m
	}
	return out
}

func newTestOrchestrator(mocks map[domain.SourceKind]*mockSource, opts OrchestratorOptions) *Orchestrator {
	opts.Sources = asPorts(mocks)
	if opts.Logger == nil {
		opts.Logger = logx.NewSilent()
	}
	if opts.Guard == nil {
		opts.Guard = netguard.New(publicResolver{}, nil, logx.NewSilent())
	}
	return NewOrchestrator(opts)
}

func TestRunScan_FullPopulatesAllFields(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{Version: "test"})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeFull, "tester")
	testutil.AssertNoError(t, err, "full scan should succeed")
	testutil.AssertNotNil(t, result, "result should not be nil")

	for _, lr := range result.Lookups() {
		testutil.AssertEqual(t, lr.Status, domain.StatusSuccess, "source "+lr.Source.String())
	}
	testutil.AssertEqual(t, result.Target.Normalized, "example.com", "normalized target")
	testutil.AssertEqual(t, result.Metadata.Caller, "tester", "caller recorded")
	testutil.AssertEqual(t, result.Metadata.Version, "test", "version recorded")
	testutil.AssertEqual(t, len(result.Metadata.SourcesDispatched), 4, "four sources dispatched")
	testutil.AssertFalse(t, result.Metadata.Deadline.IsZero(), "deadline recorded")
	testutil.AssertTrue(t, result.Metadata.Duration > 0, "duration computed")
	testutil.AssertNotEqual(t, result.Risk.Level, domain.ThreatLevel(""), "risk level derived")
}

func TestRunScan_QuickSkipsWhoisAndGeo(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "tester")
	testutil.AssertNoError(t, err, "quick scan should succeed")

	testutil.AssertEqual(t, result.DNS.Status, domain.StatusSuccess, "dns dispatched")
	testutil.AssertEqual(t, result.SSL.Status, domain.StatusSuccess, "ssl dispatched")
	testutil.AssertEqual(t, result.Whois.Status, domain.StatusSkipped, "whois skipped")
	testutil.AssertEqual(t, result.Geo.Status, domain.StatusSkipped, "geo skipped")

	testutil.AssertEqual(t, mocks[domain.SourceKindWhois].callCount(), 0, "whois never invoked")
	testutil.AssertEqual(t, mocks[domain.SourceKindGeo].callCount(), 0, "geo never invoked")
	testutil.AssertEqual(t, len(result.Metadata.SourcesDispatched), 2, "two sources dispatched")
}

func TestRunScan_SlowSourceTimesOutOthersSucceed(t *testing.T) {
	mocks := fullMockSources()
	mocks[domain.SourceKindWhois].delay = 500 * time.Millisecond
	o := newTestOrchestrator(mocks, OrchestratorOptions{
		FullDeadline: 100 * time.Millisecond,
	})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeFull, "tester")
	testutil.AssertNoError(t, err, "scan should complete despite slow source")

	testutil.AssertEqual(t, result.Whois.Status, domain.StatusTimedOut, "slow source tagged timeout")
	testutil.AssertEqual(t, result.DNS.Status, domain.StatusSuccess, "dns succeeded")
	testutil.AssertEqual(t, result.SSL.Status, domain.StatusSuccess, "ssl succeeded")
	testutil.AssertEqual(t, result.Geo.Status, domain.StatusSuccess, "geo succeeded")
}

func TestRunScan_BlockedTargetNeverDispatches(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	result, err := o.RunScan(context.Background(), "127.0.0.1", domain.ScanTypeFull, "tester")
	testutil.AssertError(t, err, "loopback target should be blocked")
	testutil.AssertTrue(t, result == nil, "no result on blocked target")

	var blocked *domain.BlockedError
	testutil.AssertTrue(t, errors.As(err, &blocked), "error is BlockedError")

	for kind, m := range mocks {
		testutil.AssertEqual(t, m.callCount(), 0, "source "+kind.String()+" never invoked")
	}
}

func TestRunScan_RateLimitRejectsWithRetryAfter(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{
		Limiter: rate.NewCallerLimiter(2, time.Minute),
	})

	for i := 0; i < 2; i++ {
		_, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "heavy")
		testutil.AssertNoError(t, err, "scan within quota should succeed")
	}

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "heavy")
	testutil.AssertError(t, err, "scan over quota should be rejected")
	testutil.AssertTrue(t, result == nil, "no result when rate limited")

	var rejected *domain.RejectedError
	testutil.AssertTrue(t, errors.As(err, &rejected), "error is RejectedError")
	testutil.AssertEqual(t, rejected.Reason, domain.RejectRateLimited, "reason is rate_limited")
	testutil.AssertTrue(t, rejected.RetryAfter > 0, "RetryAfter hint present")

	// Un caller distinto no comparte la ventana
	_, err = o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "other")
	testutil.AssertNoError(t, err, "different caller has its own quota")
}

func TestRunScan_InvalidInputRejected(t *testing.T) {
	o := newTestOrchestrator(fullMockSources(), OrchestratorOptions{})

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"malformed ip", "999.1.1.1"},
		{"not a domain", "no spaces allowed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := o.RunScan(context.Background(), tc.input, domain.ScanTypeFull, "tester")
			testutil.AssertError(t, err, "invalid input should be rejected")
			testutil.AssertTrue(t, result == nil, "no result on rejection")

			var rejected *domain.RejectedError
			testutil.AssertTrue(t, errors.As(err, &rejected), "error is RejectedError")
			testutil.AssertEqual(t, rejected.Reason, domain.RejectValidation, "reason is validation")
		})
	}
}

func TestRunScan_InvalidScanTypeRejected(t *testing.T) {
	o := newTestOrchestrator(fullMockSources(), OrchestratorOptions{})

	_, err := o.RunScan(context.Background(), "example.com", domain.ScanType("deep"), "tester")
	testutil.AssertError(t, err, "unknown scan type should be rejected")

	var rejected *domain.RejectedError
	testutil.AssertTrue(t, errors.As(err, &rejected), "error is RejectedError")
	testutil.AssertEqual(t, rejected.Reason, domain.RejectValidation, "reason is validation")
}

func TestRunScan_RepeatScanServedFromCache(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	_, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "a")
	testutil.AssertNoError(t, err, "first scan")
	_, err = o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "b")
	testutil.AssertNoError(t, err, "second scan")

	testutil.AssertEqual(t, mocks[domain.SourceKindDNS].callCount(), 1, "dns computed once")
	testutil.AssertEqual(t, mocks[domain.SourceKindSSL].callCount(), 1, "ssl computed once")
}

func TestRunScan_SourceErrorsDegradeFields(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		wantErr domain.ErrorKind
	}{
		{"connection failed", errors.Wrap(errors.ErrConnectionFailed, "dial tcp"), domain.ErrorKindNetwork},
		{"upstream quota", errors.Wrap(errors.ErrUpstreamRateLimit, "45/min"), domain.ErrorKindRateLimited},
		{"bad payload", errors.Wrap(errors.ErrInvalidResponse, "unexpected status"), domain.ErrorKindProtocol},
		{"unclassified", errors.New("boom"), domain.ErrorKindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mocks := fullMockSources()
			mocks[domain.SourceKindGeo].err = tc.err
			o := newTestOrchestrator(mocks, OrchestratorOptions{})

			result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeFull, "tester")
			testutil.AssertNoError(t, err, "source failure never fails the scan")
			testutil.AssertEqual(t, result.Geo.Status, domain.StatusFailure, "geo degraded to failure")
			testutil.AssertEqual(t, result.Geo.ErrKind, tc.wantErr, "error kind classified")
			testutil.AssertEqual(t, result.DNS.Status, domain.StatusSuccess, "other sources unaffected")
		})
	}
}

func TestRunScan_SourceTimeoutErrorTagged(t *testing.T) {
	mocks := fullMockSources()
	mocks[domain.SourceKindSSL].err = errors.Wrap(errors.ErrTimeout, "handshake")
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeFull, "tester")
	testutil.AssertNoError(t, err, "scan completes")
	testutil.AssertEqual(t, result.SSL.Status, domain.StatusTimedOut, "timeout error maps to TimedOut")
}

func TestRunScan_MissingSourceDegradesField(t *testing.T) {
	mocks := fullMockSources()
	delete(mocks, domain.SourceKindWhois)
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeFull, "tester")
	testutil.AssertNoError(t, err, "scan completes without whois source")
	testutil.AssertEqual(t, result.Whois.Status, domain.StatusFailure, "missing source is a failure")
	testutil.AssertEqual(t, result.Whois.ErrKind, domain.ErrorKindInternal, "classified internal")
}

func TestRunScan_PersistsAsynchronously(t *testing.T) {
	mocks := fullMockSources()
	store := newMockStore()
	o := newTestOrchestrator(mocks, OrchestratorOptions{Store: store})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "tester")
	testutil.AssertNoError(t, err, "scan succeeds")

	select {
	case <-store.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("result was not persisted")
	}
	testutil.AssertEqual(t, store.savedCount(), 1, "one result saved")
	testutil.AssertEqual(t, store.saved[0].ID, result.ID, "saved result matches")
}

func TestRunScan_PersistFailureDoesNotAffectResult(t *testing.T) {
	mocks := fullMockSources()
	store := newMockStore()
	store.err = errors.New("disk full")
	o := newTestOrchestrator(mocks, OrchestratorOptions{Store: store})

	result, err := o.RunScan(context.Background(), "example.com", domain.ScanTypeQuick, "tester")
	testutil.AssertNoError(t, err, "scan succeeds despite store failure")
	testutil.AssertNotNil(t, result, "result returned")

	<-store.signal
	testutil.AssertNoError(t, o.Close(), "close waits for persistence")
}

func TestRunScan_IPTargetSkipsGuardResolution(t *testing.T) {
	mocks := fullMockSources()
	o := newTestOrchestrator(mocks, OrchestratorOptions{})

	result, err := o.RunScan(context.Background(), "8.8.8.8", domain.ScanTypeQuick, "tester")
	testutil.AssertNoError(t, err, "public IP allowed")
	testutil.AssertEqual(t, result.Target.Kind, domain.TargetKindIPv4, "classified as IPv4")
}
