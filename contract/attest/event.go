package attest

const (
	EventTransfer     = "Transfer"
	EventApproval     = "Approval"
	EventVerification = "Verification"
)

// TransferEvent records a mint when From is nil.
type TransferEvent struct {
	From *string `json:"from"`
	To   *string `json:"to"`
	ID   uint32  `json:"id"`
}

// ApprovalEvent is never emitted since attestations cannot be transferred.
type ApprovalEvent struct {
	Owner    string `json:"owner"`
	Approved string `json:"approved"`
	ID       uint32 `json:"id"`
}

// VerificationEvent is emitted for every verification request.
type VerificationEvent struct {
	Account string `json:"account"`
	Success bool   `json:"success"`
}
