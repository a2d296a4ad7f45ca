package base

type KernRegistry interface {
	RegisterKernMethod(contract, method string, handler KernMethod)
	UnregisterKernMethod(ctract, method string)
	// RegisterShortcut 用于contractName缺失的时候选择哪个合约名字和合约方法来执行对应的kernel合约
	RegisterShortcut(oldmethod, contract, method string)
	GetKernMethod(contract, method string) (KernMethod, error)
}

type KernMethod func(ctx KContext) (*Response, error)

type KContext interface {
	// 调用相关数据
	Args() map[string][]byte
	Caller() string
	ContractName() string
	Method() string

	// 状态修改接口
	StateSandbox

	// EmitEvent appends an event to the call. Events are kept even when the call fails.
	EmitEvent(name string, body interface{}) error
}

// StateSandbox buffers state changes of one call until the host commits them.
type StateSandbox interface {
	Get(bucket string, key []byte) ([]byte, error)
	Put(bucket string, key, value []byte) error
	Del(bucket string, key []byte) error
	// Select iterates bucket keys in [start, limit), nil limit means the end of the bucket.
	Select(bucket string, start, limit []byte) (Iterator, error)
}

// Iterator walks sandbox state. Keys are returned without the bucket prefix.
type Iterator interface {
	Key() []byte
	Value() []byte
	Next() bool
	Error() error
	Close()
}

const (
	// StatusOK is used when contract successfully ends.
	StatusOK = 200
	// StatusErrorThreshold is the status dividing line for the normal operation of the contract
	StatusErrorThreshold = 400
	// StatusError is used when contract fails.
	StatusError = 500
)

// Response is the result of the contract run
type Response struct {
	// Status 用于反映合约的运行结果的错误码
	Status int `json:"status"`
	// Message 用于携带一些有用的debug信息
	Message string `json:"message"`
	// Data 字段用于存储合约执行的结果
	Body []byte `json:"body"`
}

// Event is emitted by a contract method. Body holds the JSON encoded payload.
type Event struct {
	Contract string `json:"contract"`
	Name     string `json:"name"`
	Body     []byte `json:"body"`
}
