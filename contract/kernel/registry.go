package kernel

import (
	"fmt"
	"sync"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
)

type registryImpl struct {
	mutex     sync.Mutex
	methods   map[string]map[string]base.KernMethod
	shortcuts map[string]shortcut
}

type shortcut struct {
	contract string
	method   string
}

func (r *registryImpl) RegisterKernMethod(contract, method string, handler base.KernMethod) {
	if err := base.ValidContractName(contract); err != nil {
		panic(fmt.Sprintf("register kernel method %s.%s: %v", contract, method, err))
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.methods == nil {
		r.methods = make(map[string]map[string]base.KernMethod)
	}
	contractMap, ok := r.methods[contract]
	if !ok {
		contractMap = make(map[string]base.KernMethod)
		r.methods[contract] = contractMap
	}
	if _, ok := contractMap[method]; ok {
		panic(fmt.Sprintf("kernel method `%s' for `%s' exists", method, contract))
	}
	contractMap[method] = handler
}

func (r *registryImpl) UnregisterKernMethod(contract, method string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	contractMap, ok := r.methods[contract]
	if !ok {
		return
	}
	delete(contractMap, method)
	if len(contractMap) == 0 {
		delete(r.methods, contract)
	}
}

func (r *registryImpl) RegisterShortcut(oldmethod, contract, method string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if r.shortcuts == nil {
		r.shortcuts = make(map[string]shortcut)
	}
	r.shortcuts[oldmethod] = shortcut{
		contract: contract,
		method:   method,
	}
}

func (r *registryImpl) GetKernMethod(contract, method string) (base.KernMethod, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	contractMap, ok := r.methods[contract]
	if !ok {
		return nil, fmt.Errorf("kernel contract '%s' not found", contract)
	}
	contractMethod, ok := contractMap[method]
	if !ok {
		return nil, fmt.Errorf("kernel method '%s' for '%s' not exists", method, contract)
	}
	return contractMethod, nil
}

// resolve maps a call without contract name through the shortcut table.
func (r *registryImpl) resolve(contract, method string) (string, string, error) {
	if contract != "" {
		return contract, method, nil
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()
	sc, ok := r.shortcuts[method]
	if !ok {
		return "", "", fmt.Errorf("shortcut for method '%s' not exists", method)
	}
	return sc.contract, sc.method, nil
}
