package attest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
)

// ContractName is the kernel contract the ledger is registered under.
const ContractName = "$attest"

// Kernel method argument names.
const (
	ArgName         = "name"
	ArgSymbol       = "symbol"
	ArgIDBase       = "id_base"
	ArgIdentity     = "identity"
	ArgID           = "id"
	ArgProofA       = "proof_a"
	ArgProofB       = "proof_b"
	ArgProofC       = "proof_c"
	ArgPublicInputs = "public_inputs"
)

// RegisterKernMethods registers every ledger method under ContractName and as
// a shortcut with the same name.
func (l *Ledger) RegisterKernMethods(reg base.KernRegistry) {
	methods := map[string]base.KernMethod{
		"Initialize":             l.initialize,
		"AddAuthorizedMinter":    l.addAuthorizedMinter,
		"RemoveAuthorizedMinter": l.removeAuthorizedMinter,
		"IsAuthorizedMinter":     l.isAuthorizedMinter,
		"AuthorizedMinters":      l.authorizedMinters,
		"VerifyProof":            l.verifyProof,
		"MintVerified":           l.mintVerified,
		"OwnerOf":                l.ownerOf,
		"AttestationOf":          l.attestationOf,
		"HasValidToken":          l.hasValidToken,
		"BalanceOf":              l.balanceOf,
		"Name":                   l.name,
		"Symbol":                 l.symbol,
		"TotalSupply":            l.totalSupply,
		"Admin":                  l.admin,
		"VerificationKey":        l.verificationKey,
	}
	for method, handler := range methods {
		reg.RegisterKernMethod(ContractName, method, handler)
		reg.RegisterShortcut(method, ContractName, method)
	}
}

func (l *Ledger) initialize(ctx base.KContext) (*base.Response, error) {
	args := ctx.Args()
	var idBase uint64
	if raw := args[ArgIDBase]; len(raw) > 0 {
		var err error
		idBase, err = strconv.ParseUint(string(raw), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, ArgIDBase, err)
		}
	}
	if err := l.Initialize(ctx, string(args[ArgName]), string(args[ArgSymbol]), uint32(idBase)); err != nil {
		return nil, err
	}
	return base.NewResponse(nil), nil
}

func (l *Ledger) addAuthorizedMinter(ctx base.KContext) (*base.Response, error) {
	if err := l.AddAuthorizedMinter(ctx, string(ctx.Args()[ArgIdentity])); err != nil {
		return nil, err
	}
	return base.NewResponse(nil), nil
}

func (l *Ledger) removeAuthorizedMinter(ctx base.KContext) (*base.Response, error) {
	if err := l.RemoveAuthorizedMinter(ctx, string(ctx.Args()[ArgIdentity])); err != nil {
		return nil, err
	}
	return base.NewResponse(nil), nil
}

func (l *Ledger) isAuthorizedMinter(ctx base.KContext) (*base.Response, error) {
	ok, err := l.IsAuthorizedMinter(ctx, string(ctx.Args()[ArgIdentity]))
	if err != nil {
		return nil, err
	}
	return base.BoolResponse(ok), nil
}

func (l *Ledger) authorizedMinters(ctx base.KContext) (*base.Response, error) {
	minters, err := l.AuthorizedMinters(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResponse(minters)
}

func (l *Ledger) verifyProof(ctx base.KContext) (*base.Response, error) {
	ok, err := l.VerifyProof(ctx, bundleFromArgs(ctx.Args()))
	if err != nil {
		return nil, err
	}
	return base.BoolResponse(ok), nil
}

func (l *Ledger) mintVerified(ctx base.KContext) (*base.Response, error) {
	id, err := l.MintVerified(ctx, bundleFromArgs(ctx.Args()))
	if err != nil {
		return nil, err
	}
	return base.UintResponse(uint64(id)), nil
}

func (l *Ledger) ownerOf(ctx base.KContext) (*base.Response, error) {
	id, err := strconv.ParseUint(string(ctx.Args()[ArgID]), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, ArgID, err)
	}
	owner, err := l.OwnerOf(ctx, uint32(id))
	if err != nil {
		return nil, err
	}
	return base.NewResponse([]byte(owner)), nil
}

func (l *Ledger) attestationOf(ctx base.KContext) (*base.Response, error) {
	a, err := l.AttestationOf(ctx, string(ctx.Args()[ArgIdentity]))
	if err != nil {
		return nil, err
	}
	return jsonResponse(a)
}

func (l *Ledger) hasValidToken(ctx base.KContext) (*base.Response, error) {
	ok, err := l.HasValidToken(ctx, string(ctx.Args()[ArgIdentity]))
	if err != nil {
		return nil, err
	}
	return base.BoolResponse(ok), nil
}

func (l *Ledger) balanceOf(ctx base.KContext) (*base.Response, error) {
	n, err := l.BalanceOf(ctx, string(ctx.Args()[ArgIdentity]))
	if err != nil {
		return nil, err
	}
	return base.UintResponse(n), nil
}

func (l *Ledger) name(ctx base.KContext) (*base.Response, error) {
	v, err := l.Name(ctx)
	if err != nil {
		return nil, err
	}
	return base.NewResponse([]byte(v)), nil
}

func (l *Ledger) symbol(ctx base.KContext) (*base.Response, error) {
	v, err := l.Symbol(ctx)
	if err != nil {
		return nil, err
	}
	return base.NewResponse([]byte(v)), nil
}

func (l *Ledger) totalSupply(ctx base.KContext) (*base.Response, error) {
	n, err := l.TotalSupply(ctx)
	if err != nil {
		return nil, err
	}
	return base.UintResponse(n), nil
}

func (l *Ledger) admin(ctx base.KContext) (*base.Response, error) {
	v, err := l.Admin(ctx)
	if err != nil {
		return nil, err
	}
	return base.NewResponse([]byte(v)), nil
}

func (l *Ledger) verificationKey(ctx base.KContext) (*base.Response, error) {
	vk, err := l.VerificationKey()
	if err != nil {
		return nil, err
	}
	return base.NewResponse(vk), nil
}

func bundleFromArgs(args map[string][]byte) *ProofBundle {
	return &ProofBundle{
		A:            args[ArgProofA],
		B:            args[ArgProofB],
		C:            args[ArgProofC],
		PublicInputs: args[ArgPublicInputs],
	}
}

// BundleArgs is the inverse of bundleFromArgs, used by clients.
func BundleArgs(bundle *ProofBundle) map[string][]byte {
	return map[string][]byte{
		ArgProofA:       bundle.A,
		ArgProofB:       bundle.B,
		ArgProofC:       bundle.C,
		ArgPublicInputs: bundle.PublicInputs,
	}
}

func jsonResponse(v interface{}) (*base.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return base.NewResponse(body), nil
}
