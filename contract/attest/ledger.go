// Package attest implements the age attestation ledger. Each identity can
// hold at most one non-transferable attestation, minted only after an
// authorized caller presents a valid proof.
package attest

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

const (
	bucketMeta    = "attest.meta"
	bucketMinter  = "attest.minter"
	bucketOwner   = "attest.owner"
	bucketHolder  = "attest.holder"
	bucketBalance = "attest.balance"
)

var (
	keyAdmin  = []byte("admin")
	keyName   = []byte("name")
	keySymbol = []byte("symbol")
	keyNextID = []byte("next_id")
	keySupply = []byte("supply")
)

const (
	mintOK              = "ok"
	mintUnauthorized    = "unauthorized"
	mintAttested        = "attested"
	mintInvalidResponse = "invalid_response"
	mintRejected        = "rejected"
	mintOverflow        = "overflow"
)

// Verifier checks a proof bundle in its wire form. age.Verifier implements it.
type Verifier interface {
	VerifyProof(a, b, c, publicInputs []byte) (bool, error)
	VerificationKey() ([]byte, error)
}

// ProofBundle is a proof together with the public inputs it was made for.
type ProofBundle struct {
	A            []byte
	B            []byte
	C            []byte
	PublicInputs []byte
}

// Attestation is the record minted for an identity.
type Attestation struct {
	ID    uint32 `json:"id"`
	Owner string `json:"owner"`
}

// Ledger holds no state itself, everything lives in the call sandbox.
type Ledger struct {
	verifier Verifier
}

func NewLedger(verifier Verifier) *Ledger {
	return &Ledger{verifier: verifier}
}

// Initialize records the token metadata and makes the caller administrator.
func (l *Ledger) Initialize(ctx base.KContext, name, symbol string, idBase uint32) error {
	if ctx.Caller() == "" {
		return fmt.Errorf("%w: empty caller", ErrInvalidArgument)
	}
	_, found, err := getOptional(ctx, bucketMeta, keyAdmin)
	if err != nil {
		return err
	}
	if found {
		return ErrAlreadyInitialized
	}

	for _, kv := range []struct {
		key   []byte
		value []byte
	}{
		{keyAdmin, []byte(ctx.Caller())},
		{keyName, []byte(name)},
		{keySymbol, []byte(symbol)},
		{keyNextID, encodeUint64(uint64(idBase))},
		{keySupply, encodeUint64(0)},
	} {
		if err := ctx.Put(bucketMeta, kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) Admin(ctx base.KContext) (string, error) {
	v, found, err := getOptional(ctx, bucketMeta, keyAdmin)
	if err != nil {
		return "", err
	}
	if !found {
		return "", ErrNotInitialized
	}
	return string(v), nil
}

func (l *Ledger) requireAdmin(ctx base.KContext) error {
	admin, err := l.Admin(ctx)
	if err != nil {
		return err
	}
	if ctx.Caller() != admin {
		return ErrNotAdmin
	}
	return nil
}

func (l *Ledger) AddAuthorizedMinter(ctx base.KContext, identity string) error {
	if err := l.requireAdmin(ctx); err != nil {
		return err
	}
	if identity == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidArgument)
	}
	return ctx.Put(bucketMinter, []byte(identity), []byte{1})
}

func (l *Ledger) RemoveAuthorizedMinter(ctx base.KContext, identity string) error {
	if err := l.requireAdmin(ctx); err != nil {
		return err
	}
	return ctx.Del(bucketMinter, []byte(identity))
}

func (l *Ledger) IsAuthorizedMinter(ctx base.KContext, identity string) (bool, error) {
	if _, err := l.Admin(ctx); err != nil {
		return false, err
	}
	_, found, err := getOptional(ctx, bucketMinter, []byte(identity))
	return found, err
}

// AuthorizedMinters lists the authorization set in key order.
func (l *Ledger) AuthorizedMinters(ctx base.KContext) ([]string, error) {
	if _, err := l.Admin(ctx); err != nil {
		return nil, err
	}
	iter, err := ctx.Select(bucketMinter, nil, nil)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []string
	for iter.Next() {
		out = append(out, string(iter.Key()))
	}
	return out, iter.Error()
}

// VerifyProof reports whether the bundle verifies. Callers outside the
// authorization set get false and the verifier is not invoked. A
// Verification event is emitted in every case.
func (l *Ledger) VerifyProof(ctx base.KContext, bundle *ProofBundle) (bool, error) {
	ok, err := l.IsAuthorizedMinter(ctx, ctx.Caller())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, l.emitVerification(ctx, false)
	}
	return l.verify(ctx, bundle)
}

func (l *Ledger) verify(ctx base.KContext, bundle *ProofBundle) (bool, error) {
	if bundle == nil {
		bundle = &ProofBundle{}
	}
	ok, verr := l.verifier.VerifyProof(bundle.A, bundle.B, bundle.C, bundle.PublicInputs)
	ok = ok && verr == nil
	if err := l.emitVerification(ctx, ok); err != nil {
		return false, err
	}
	if verr != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidVerifierResponse, verr)
	}
	return ok, nil
}

// MintVerified mints an attestation for the caller once its proof verifies.
// Every check runs before the first write, so a failed call leaves the
// ledger untouched.
func (l *Ledger) MintVerified(ctx base.KContext, bundle *ProofBundle) (uint32, error) {
	id, result, err := l.mint(ctx, bundle)
	if result != "" {
		metrics.LedgerMintCounter.WithLabelValues(result).Inc()
	}
	return id, err
}

func (l *Ledger) mint(ctx base.KContext, bundle *ProofBundle) (uint32, string, error) {
	caller := ctx.Caller()
	authorized, err := l.IsAuthorizedMinter(ctx, caller)
	if err != nil {
		return 0, "", err
	}
	if !authorized {
		if err := l.emitVerification(ctx, false); err != nil {
			return 0, "", err
		}
		return 0, mintUnauthorized, ErrNotAuthorizedCaller
	}

	attested, err := l.HasValidToken(ctx, caller)
	if err != nil {
		return 0, "", err
	}
	if attested {
		return 0, mintAttested, ErrAlreadyAttested
	}

	ok, err := l.verify(ctx, bundle)
	if err != nil {
		if errors.Is(err, ErrInvalidVerifierResponse) {
			return 0, mintInvalidResponse, err
		}
		return 0, "", err
	}
	if !ok {
		return 0, mintRejected, ErrVerificationFailed
	}

	next, err := l.getUint(ctx, keyNextID)
	if err != nil {
		return 0, "", err
	}
	if next > math.MaxUint32 {
		return 0, mintOverflow, ErrIdentifierOverflow
	}
	supply, err := l.getUint(ctx, keySupply)
	if err != nil {
		return 0, "", err
	}
	balance, err := l.BalanceOf(ctx, caller)
	if err != nil {
		return 0, "", err
	}

	id := uint32(next)
	writes := []struct {
		bucket string
		key    []byte
		value  []byte
	}{
		{bucketOwner, encodeID(id), []byte(caller)},
		{bucketHolder, []byte(caller), encodeID(id)},
		{bucketBalance, []byte(caller), encodeUint64(balance + 1)},
		{bucketMeta, keyNextID, encodeUint64(next + 1)},
		{bucketMeta, keySupply, encodeUint64(supply + 1)},
	}
	for _, w := range writes {
		if err := ctx.Put(w.bucket, w.key, w.value); err != nil {
			return 0, "", err
		}
	}
	to := caller
	if err := ctx.EmitEvent(EventTransfer, &TransferEvent{From: nil, To: &to, ID: id}); err != nil {
		return 0, "", err
	}
	metrics.LedgerSupplyGauge.Set(float64(supply + 1))
	return id, mintOK, nil
}

func (l *Ledger) OwnerOf(ctx base.KContext, id uint32) (string, error) {
	if _, err := l.Admin(ctx); err != nil {
		return "", err
	}
	v, found, err := getOptional(ctx, bucketOwner, encodeID(id))
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: id %d", ErrTokenNotFound, id)
	}
	return string(v), nil
}

// AttestationOf returns the attestation held by identity.
func (l *Ledger) AttestationOf(ctx base.KContext, identity string) (*Attestation, error) {
	if _, err := l.Admin(ctx); err != nil {
		return nil, err
	}
	v, found, err := getOptional(ctx, bucketHolder, []byte(identity))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: identity %s", ErrTokenNotFound, identity)
	}
	return &Attestation{ID: binary.BigEndian.Uint32(v), Owner: identity}, nil
}

func (l *Ledger) HasValidToken(ctx base.KContext, identity string) (bool, error) {
	balance, err := l.BalanceOf(ctx, identity)
	return balance > 0, err
}

func (l *Ledger) BalanceOf(ctx base.KContext, identity string) (uint64, error) {
	if _, err := l.Admin(ctx); err != nil {
		return 0, err
	}
	v, found, err := getOptional(ctx, bucketBalance, []byte(identity))
	if err != nil || !found {
		return 0, err
	}
	return decodeUint64(v)
}

func (l *Ledger) Name(ctx base.KContext) (string, error) {
	return l.getString(ctx, keyName)
}

func (l *Ledger) Symbol(ctx base.KContext) (string, error) {
	return l.getString(ctx, keySymbol)
}

func (l *Ledger) TotalSupply(ctx base.KContext) (uint64, error) {
	return l.getUint(ctx, keySupply)
}

// VerificationKey returns the serialized key the ledger verifies against.
func (l *Ledger) VerificationKey() ([]byte, error) {
	return l.verifier.VerificationKey()
}

func (l *Ledger) emitVerification(ctx base.KContext, success bool) error {
	return ctx.EmitEvent(EventVerification, &VerificationEvent{Account: ctx.Caller(), Success: success})
}

func (l *Ledger) getString(ctx base.KContext, key []byte) (string, error) {
	if _, err := l.Admin(ctx); err != nil {
		return "", err
	}
	v, _, err := getOptional(ctx, bucketMeta, key)
	return string(v), err
}

func (l *Ledger) getUint(ctx base.KContext, key []byte) (uint64, error) {
	v, found, err := getOptional(ctx, bucketMeta, key)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, ErrNotInitialized
	}
	return decodeUint64(v)
}

func getOptional(ctx base.KContext, bucket string, key []byte) ([]byte, bool, error) {
	v, err := ctx.Get(bucket, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func encodeID(id uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], id)
	return b[:]
}

func encodeUint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("bad counter encoding, length %d", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
