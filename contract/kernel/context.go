package kernel

import (
	"encoding/json"
	"fmt"

	"github.com/gammazero/deque"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/contract/sandbox"
)

type kcontextImpl struct {
	*sandbox.StateCache

	contract string
	method   string
	caller   string
	args     map[string][]byte
	// pending events in emission order
	events deque.Deque
}

func newKContext(req *InvokeRequest, cache *sandbox.StateCache) *kcontextImpl {
	args := req.Args
	if args == nil {
		args = make(map[string][]byte)
	}
	return &kcontextImpl{
		StateCache: cache,
		contract:   req.Contract,
		method:     req.Method,
		caller:     req.Caller,
		args:       args,
	}
}

func (k *kcontextImpl) Args() map[string][]byte {
	return k.args
}

func (k *kcontextImpl) Caller() string {
	return k.caller
}

func (k *kcontextImpl) ContractName() string {
	return k.contract
}

func (k *kcontextImpl) Method() string {
	return k.method
}

func (k *kcontextImpl) EmitEvent(name string, body interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode event %s: %v", name, err)
	}
	k.events.PushBack(&base.Event{
		Contract: k.contract,
		Name:     name,
		Body:     raw,
	})
	return nil
}
