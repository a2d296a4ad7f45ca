package attest

import "errors"

var (
	ErrNotInitialized     = errors.New("ledger not initialized")
	ErrAlreadyInitialized = errors.New("ledger already initialized")
	ErrNotAdmin           = errors.New("caller is not the administrator")
	// ErrNotAuthorizedCaller is returned when the caller is not an authorized minter.
	ErrNotAuthorizedCaller = errors.New("caller is not authorized")
	ErrVerificationFailed  = errors.New("proof verification failed")
	// ErrInvalidVerifierResponse wraps a verifier call that could not complete,
	// such as a malformed proof or public input.
	ErrInvalidVerifierResponse = errors.New("invalid verifier response")
	// ErrIdentifierOverflow is permanent, the id space of the deployment is exhausted.
	ErrIdentifierOverflow = errors.New("attestation identifier overflow")
	ErrAlreadyAttested    = errors.New("identity already holds an attestation")
	ErrTokenNotFound      = errors.New("attestation not found")
	ErrInvalidArgument    = errors.New("invalid argument")
)
