package attest

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	xctx "github.com/Calnunes/ZK-Access-Control-System/common/context"
	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/contract/kernel"
	mock "github.com/Calnunes/ZK-Access-Control-System/mock/config"
)

const testAdmin = "admin"

var errVerifierDown = errors.New("verifier unavailable")

type stubVerifier struct {
	mutex  sync.Mutex
	calls  int
	result bool
	err    error
}

func (s *stubVerifier) VerifyProof(a, b, c, publicInputs []byte) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.calls++
	return s.result, s.err
}

func (s *stubVerifier) VerificationKey() ([]byte, error) {
	return []byte("stub-vk"), nil
}

func (s *stubVerifier) set(result bool, err error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.result, s.err = result, err
}

func (s *stubVerifier) count() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

func newTestHost(t *testing.T, verifier Verifier, idBase uint32) *kernel.Host {
	t.Helper()
	host, err := kernel.NewHost(mock.NewMemDatabase(t), mock.NewFakeLogger("attest"))
	if err != nil {
		t.Fatal(err)
	}
	NewLedger(verifier).RegisterKernMethods(host.GetKernRegistry())
	_, err = invoke(host, testAdmin, "Initialize", map[string][]byte{
		ArgName:   []byte("Age Verification Token"),
		ArgSymbol: []byte("AGE"),
		ArgIDBase: []byte(strconv.FormatUint(uint64(idBase), 10)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return host
}

func invoke(host *kernel.Host, caller, method string, args map[string][]byte) (*base.Response, error) {
	return host.Invoke(xctx.NewBaseCtx(context.Background(), nil), &kernel.InvokeRequest{
		Contract: ContractName,
		Method:   method,
		Caller:   caller,
		Args:     args,
	})
}

func mustInvoke(t *testing.T, host *kernel.Host, caller, method string, args map[string][]byte) string {
	t.Helper()
	resp, err := invoke(host, caller, method, args)
	if err != nil {
		t.Fatalf("%s by %s: %v", method, caller, err)
	}
	return string(resp.Body)
}

func identityArgs(identity string) map[string][]byte {
	return map[string][]byte{ArgIdentity: []byte(identity)}
}

func dummyBundle() map[string][]byte {
	return BundleArgs(&ProofBundle{A: []byte{1}, B: []byte{2}, C: []byte{3}, PublicInputs: []byte{4}})
}

func authorize(t *testing.T, host *kernel.Host, identities ...string) {
	t.Helper()
	for _, id := range identities {
		mustInvoke(t, host, testAdmin, "AddAuthorizedMinter", identityArgs(id))
	}
}

func eventsNamed(t *testing.T, host *kernel.Host, name string) []*kernel.EventRecord {
	t.Helper()
	all, err := host.Events(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	var out []*kernel.EventRecord
	for _, ev := range all {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func TestInitialize(t *testing.T) {
	host := newTestHost(t, &stubVerifier{}, 1)

	if _, err := invoke(host, "bob", "Initialize", nil); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("expect ErrAlreadyInitialized, got %v", err)
	}
	if got := mustInvoke(t, host, "bob", "Admin", nil); got != testAdmin {
		t.Fatalf("admin is %s", got)
	}
	if got := mustInvoke(t, host, "bob", "Name", nil); got != "Age Verification Token" {
		t.Fatalf("name is %s", got)
	}
	if got := mustInvoke(t, host, "bob", "Symbol", nil); got != "AGE" {
		t.Fatalf("symbol is %s", got)
	}
	if got := mustInvoke(t, host, "bob", "TotalSupply", nil); got != "0" {
		t.Fatalf("supply is %s", got)
	}
	if got := mustInvoke(t, host, "bob", "VerificationKey", nil); got != "stub-vk" {
		t.Fatalf("verification key is %s", got)
	}
	if _, err := invoke(host, "bob", "Initialize", map[string][]byte{ArgIDBase: []byte("-1")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument, got %v", err)
	}
}

func TestNotInitialized(t *testing.T) {
	host, err := kernel.NewHost(mock.NewMemDatabase(t), mock.NewFakeLogger("attest"))
	if err != nil {
		t.Fatal(err)
	}
	NewLedger(&stubVerifier{}).RegisterKernMethods(host.GetKernRegistry())

	for _, method := range []string{"MintVerified", "VerifyProof", "AddAuthorizedMinter", "TotalSupply", "HasValidToken"} {
		if _, err := invoke(host, "alice", method, nil); !errors.Is(err, ErrNotInitialized) {
			t.Fatalf("%s: expect ErrNotInitialized, got %v", method, err)
		}
	}
}

func TestAdminOnlyMutations(t *testing.T) {
	host := newTestHost(t, &stubVerifier{}, 1)

	if _, err := invoke(host, "bob", "AddAuthorizedMinter", identityArgs("bob")); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expect ErrNotAdmin, got %v", err)
	}
	if got := mustInvoke(t, host, "bob", "IsAuthorizedMinter", identityArgs("bob")); got != "false" {
		t.Fatal("non admin changed the authorization set")
	}

	authorize(t, host, "carol", "alice")
	if got := mustInvoke(t, host, "bob", "IsAuthorizedMinter", identityArgs("alice")); got != "true" {
		t.Fatal("alice should be authorized")
	}
	if got := mustInvoke(t, host, "bob", "AuthorizedMinters", nil); got != `["alice","carol"]` {
		t.Fatalf("unexpected minters %s", got)
	}

	if _, err := invoke(host, "alice", "RemoveAuthorizedMinter", identityArgs("carol")); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expect ErrNotAdmin, got %v", err)
	}
	mustInvoke(t, host, testAdmin, "RemoveAuthorizedMinter", identityArgs("carol"))
	if got := mustInvoke(t, host, "bob", "IsAuthorizedMinter", identityArgs("carol")); got != "false" {
		t.Fatal("carol should be removed")
	}
	if _, err := invoke(host, testAdmin, "AddAuthorizedMinter", identityArgs("")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument, got %v", err)
	}
}

func TestAuthorizationGating(t *testing.T) {
	verifier := &stubVerifier{result: true}
	host := newTestHost(t, verifier, 1)

	if got := mustInvoke(t, host, "mallory", "VerifyProof", dummyBundle()); got != "false" {
		t.Fatal("unauthorized caller verified a proof")
	}
	if _, err := invoke(host, "mallory", "MintVerified", dummyBundle()); !errors.Is(err, ErrNotAuthorizedCaller) {
		t.Fatalf("expect ErrNotAuthorizedCaller, got %v", err)
	}
	if verifier.count() != 0 {
		t.Fatalf("verifier invoked %d times for an unauthorized caller", verifier.count())
	}

	events := eventsNamed(t, host, EventVerification)
	if len(events) != 2 {
		t.Fatalf("expect 2 verification events, got %d", len(events))
	}
	var ev VerificationEvent
	if err := json.Unmarshal(events[0].Body, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Account != "mallory" || ev.Success {
		t.Fatalf("unexpected verification event %+v", ev)
	}
	if events[1].Success {
		t.Fatal("event of a failed mint must be marked unsuccessful")
	}

	authorize(t, host, "alice")
	if got := mustInvoke(t, host, "alice", "VerifyProof", dummyBundle()); got != "true" {
		t.Fatal("authorized caller should get the verifier result")
	}
	if verifier.count() != 1 {
		t.Fatalf("verifier invoked %d times, want 1", verifier.count())
	}
}

func TestMintVerified(t *testing.T) {
	verifier := &stubVerifier{result: true}
	host := newTestHost(t, verifier, 1)
	authorize(t, host, "alice")

	okBefore := testutil.ToFloat64(metrics.LedgerMintCounter.WithLabelValues(mintOK))
	attestedBefore := testutil.ToFloat64(metrics.LedgerMintCounter.WithLabelValues(mintAttested))

	if got := mustInvoke(t, host, "alice", "MintVerified", dummyBundle()); got != "1" {
		t.Fatalf("first id is %s, want 1", got)
	}
	if got := mustInvoke(t, host, "bob", "OwnerOf", map[string][]byte{ArgID: []byte("1")}); got != "alice" {
		t.Fatalf("owner of 1 is %s", got)
	}
	if got := mustInvoke(t, host, "bob", "HasValidToken", identityArgs("alice")); got != "true" {
		t.Fatal("alice should hold a token")
	}
	if got := mustInvoke(t, host, "bob", "AttestationOf", identityArgs("alice")); got != `{"id":1,"owner":"alice"}` {
		t.Fatalf("unexpected attestation %s", got)
	}

	// second mint by the same identity is refused before verification
	if _, err := invoke(host, "alice", "MintVerified", dummyBundle()); !errors.Is(err, ErrAlreadyAttested) {
		t.Fatalf("expect ErrAlreadyAttested, got %v", err)
	}
	if got := mustInvoke(t, host, "bob", "BalanceOf", identityArgs("alice")); got != "1" {
		t.Fatalf("balance is %s, want 1", got)
	}
	if got := mustInvoke(t, host, "bob", "TotalSupply", nil); got != "1" {
		t.Fatalf("supply is %s, want 1", got)
	}
	if verifier.count() != 1 {
		t.Fatalf("verifier invoked %d times, want 1", verifier.count())
	}

	transfers := eventsNamed(t, host, EventTransfer)
	if len(transfers) != 1 || string(transfers[0].Body) != `{"from":null,"to":"alice","id":1}` {
		t.Fatalf("unexpected transfer events %+v", transfers)
	}
	if _, err := invoke(host, "bob", "OwnerOf", map[string][]byte{ArgID: []byte("2")}); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expect ErrTokenNotFound, got %v", err)
	}
	if _, err := invoke(host, "bob", "OwnerOf", map[string][]byte{ArgID: []byte("x")}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expect ErrInvalidArgument, got %v", err)
	}

	if got := testutil.ToFloat64(metrics.LedgerMintCounter.WithLabelValues(mintOK)); got != okBefore+1 {
		t.Fatalf("ok mints %v, want %v", got, okBefore+1)
	}
	if got := testutil.ToFloat64(metrics.LedgerMintCounter.WithLabelValues(mintAttested)); got != attestedBefore+1 {
		t.Fatalf("attested mints %v, want %v", got, attestedBefore+1)
	}
}

func TestMintIdentifiersMonotonic(t *testing.T) {
	host := newTestHost(t, &stubVerifier{result: true}, 100)
	identities := []string{"a1", "a2", "a3", "a4", "a5"}
	authorize(t, host, identities...)

	for i, id := range identities {
		got := mustInvoke(t, host, id, "MintVerified", dummyBundle())
		if got != strconv.Itoa(100+i) {
			t.Fatalf("mint %d got id %s, want %d", i, got, 100+i)
		}
	}
}

func TestMintFailureLeavesStateUntouched(t *testing.T) {
	verifier := &stubVerifier{}
	host := newTestHost(t, verifier, 7)
	authorize(t, host, "alice")

	if _, err := invoke(host, "alice", "MintVerified", dummyBundle()); !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expect ErrVerificationFailed, got %v", err)
	}
	verifier.set(false, errVerifierDown)
	_, err := invoke(host, "alice", "MintVerified", dummyBundle())
	if !errors.Is(err, ErrInvalidVerifierResponse) || !errors.Is(err, errVerifierDown) {
		t.Fatalf("expect ErrInvalidVerifierResponse wrapping the cause, got %v", err)
	}
	if _, err := invoke(host, "alice", "VerifyProof", dummyBundle()); !errors.Is(err, ErrInvalidVerifierResponse) {
		t.Fatalf("expect ErrInvalidVerifierResponse from VerifyProof, got %v", err)
	}

	if got := mustInvoke(t, host, "bob", "TotalSupply", nil); got != "0" {
		t.Fatalf("supply changed to %s", got)
	}
	if got := mustInvoke(t, host, "bob", "HasValidToken", identityArgs("alice")); got != "false" {
		t.Fatal("failed mint left a token")
	}
	if got := mustInvoke(t, host, "bob", "IsAuthorizedMinter", identityArgs("alice")); got != "true" {
		t.Fatal("failed mint changed the authorization set")
	}

	verifier.set(true, nil)
	if got := mustInvoke(t, host, "alice", "MintVerified", dummyBundle()); got != "7" {
		t.Fatalf("counter moved on failed mints, got id %s", got)
	}
}

func TestIdentifierOverflow(t *testing.T) {
	host := newTestHost(t, &stubVerifier{result: true}, math.MaxUint32)
	authorize(t, host, "alice", "bob")

	if got := mustInvoke(t, host, "alice", "MintVerified", dummyBundle()); got != strconv.FormatUint(math.MaxUint32, 10) {
		t.Fatalf("last id is %s", got)
	}
	for i := 0; i < 2; i++ {
		if _, err := invoke(host, "bob", "MintVerified", dummyBundle()); !errors.Is(err, ErrIdentifierOverflow) {
			t.Fatalf("expect ErrIdentifierOverflow, got %v", err)
		}
	}
	if got := mustInvoke(t, host, "bob", "HasValidToken", identityArgs("bob")); got != "false" {
		t.Fatal("overflowed mint left a token")
	}
}

func TestConcurrentMintSameIdentity(t *testing.T) {
	verifier := &stubVerifier{result: true}
	host := newTestHost(t, verifier, 1)
	authorize(t, host, "alice")

	var (
		wg       sync.WaitGroup
		mutex    sync.Mutex
		success  int
		attested int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := invoke(host, "alice", "MintVerified", dummyBundle())
			mutex.Lock()
			defer mutex.Unlock()
			switch {
			case err == nil:
				success++
			case errors.Is(err, ErrAlreadyAttested):
				attested++
			default:
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if success != 1 || attested != 15 {
		t.Fatalf("success=%d attested=%d", success, attested)
	}
	if got := mustInvoke(t, host, "bob", "TotalSupply", nil); got != "1" {
		t.Fatalf("supply is %s, want 1", got)
	}
}
