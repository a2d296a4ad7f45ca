package kernel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gammazero/deque"

	xctx "github.com/Calnunes/ZK-Access-Control-System/common/context"
	"github.com/Calnunes/ZK-Access-Control-System/common/metrics"
	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/contract/sandbox"
	"github.com/Calnunes/ZK-Access-Control-System/logger"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

const (
	eventPrefix = "event/"
	// first key past every event key
	eventLimit = "event0"
	hostModule = "host"
)

// ContractError indicates the error of the contract running result
type ContractError struct {
	Status  int
	Message string
}

// Error implements error interface
func (c *ContractError) Error() string {
	return fmt.Sprintf("contract error status:%d message:%s", c.Status, c.Message)
}

// InvokeRequest describes one contract call. An empty Contract resolves
// Method through the shortcut table.
type InvokeRequest struct {
	Contract string
	Method   string
	Caller   string
	Args     map[string][]byte
}

// EventRecord is an entry of the append-only event log.
type EventRecord struct {
	Seq      uint64          `json:"seq"`
	Contract string          `json:"contract"`
	Method   string          `json:"method"`
	Caller   string          `json:"caller"`
	Name     string          `json:"name"`
	Body     json.RawMessage `json:"body"`
	Success  bool            `json:"success"`
}

// Host runs kernel methods one at a time. The state written by a call is
// committed in a single batch when it succeeds and dropped when it fails.
// Events are logged either way.
type Host struct {
	mutex    sync.Mutex
	db       storage.Database
	registry registryImpl
	log      logger.Logger
	seq      uint64
}

func NewHost(db storage.Database, log logger.Logger) (*Host, error) {
	if db == nil {
		return nil, errors.New("nil database when init host")
	}
	if log == nil {
		return nil, errors.New("nil logger when init host")
	}
	h := &Host{
		db:  db,
		log: log,
	}
	seq, err := h.lastSeq()
	if err != nil {
		return nil, err
	}
	h.seq = seq
	return h, nil
}

func (h *Host) GetKernRegistry() base.KernRegistry {
	return &h.registry
}

// Invoke runs the method and returns its response. A method error is
// returned unchanged so callers can inspect it with errors.Is.
func (h *Host) Invoke(ctx xctx.Context, req *InvokeRequest) (*base.Response, error) {
	log := ctx.GetLog()
	if log == nil {
		log = h.log
	}
	contract, method, err := h.registry.resolve(req.Contract, req.Method)
	if err != nil {
		return nil, err
	}
	handler, err := h.registry.GetKernMethod(contract, method)
	if err != nil {
		return nil, err
	}

	metrics.ConcurrentRequestGauge.WithLabelValues(hostModule).Inc()
	defer metrics.ConcurrentRequestGauge.WithLabelValues(hostModule).Dec()

	h.mutex.Lock()
	defer h.mutex.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	call := *req
	call.Contract, call.Method = contract, method
	cache := sandbox.NewStateCache(h.db)
	kctx := newKContext(&call, cache)

	resp, callErr := handler(kctx)
	if callErr == nil && resp == nil {
		callErr = &ContractError{Status: base.StatusError, Message: "empty response"}
	}
	if callErr == nil && resp.Status >= base.StatusErrorThreshold {
		callErr = &ContractError{Status: resp.Status, Message: resp.Message}
	}

	status := base.StatusOK
	batch := h.db.NewBatch()
	if callErr == nil {
		if err := cache.Flush(batch); err != nil {
			callErr, status = err, base.StatusError
		}
	}
	if callErr != nil {
		cache.Discard()
		batch.Reset()
		if status == base.StatusOK {
			status = base.StatusErrorThreshold
		}
	}

	prevSeq, nevents := h.seq, kctx.events.Len()
	if err := h.appendEvents(batch, &call, &kctx.events, callErr == nil); err != nil {
		h.seq = prevSeq
		return nil, err
	}
	if err := batch.Write(); err != nil {
		h.seq = prevSeq
		status = base.StatusError
		h.record(&call, status, ctx)
		log.Error("commit call failed", "contract", contract, "method", method, "err", err)
		return nil, fmt.Errorf("commit call %s.%s: %w", contract, method, err)
	}
	h.record(&call, status, ctx)

	if callErr != nil {
		log.Warn("invoke contract failed", "contract", contract, "method", method,
			"caller", call.Caller, "events", nevents, "err", callErr)
		return nil, callErr
	}
	log.Info("invoke contract", "contract", contract, "method", method, "caller", call.Caller,
		"writes", cache.Len(), "events", nevents, "cost", time.Since(ctx.GetStart()))
	return resp, nil
}

// Events returns up to limit event records starting at sequence from.
// A limit <= 0 returns all of them.
func (h *Host) Events(from uint64, limit int) ([]*EventRecord, error) {
	iter := h.db.NewIteratorWithRange(eventKey(from), []byte(eventLimit))
	defer iter.Release()

	var out []*EventRecord
	for iter.Next() {
		rec := &EventRecord{}
		if err := json.Unmarshal(iter.Value(), rec); err != nil {
			return nil, fmt.Errorf("decode event %s: %v", iter.Key(), err)
		}
		out = append(out, rec)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, iter.Error()
}

func (h *Host) appendEvents(batch storage.Batch, call *InvokeRequest, events *deque.Deque, success bool) error {
	for events.Len() > 0 {
		ev := events.PopFront().(*base.Event)
		h.seq++
		raw, err := json.Marshal(&EventRecord{
			Seq:      h.seq,
			Contract: ev.Contract,
			Method:   call.Method,
			Caller:   call.Caller,
			Name:     ev.Name,
			Body:     ev.Body,
			Success:  success,
		})
		if err != nil {
			return fmt.Errorf("encode event %s: %v", ev.Name, err)
		}
		if err := batch.Put(eventKey(h.seq), raw); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) record(call *InvokeRequest, status int, ctx xctx.Context) {
	metrics.ContractInvokeCounter.WithLabelValues(call.Contract, call.Method, strconv.Itoa(status)).Inc()
	metrics.ContractInvokeHistogram.WithLabelValues(call.Contract, call.Method).Observe(time.Since(ctx.GetStart()).Seconds())
}

func (h *Host) lastSeq() (uint64, error) {
	iter := h.db.NewIteratorWithPrefix([]byte(eventPrefix))
	defer iter.Release()
	if !iter.Last() {
		return 0, iter.Error()
	}
	seq, err := strconv.ParseUint(string(iter.Key()[len(eventPrefix):]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad event key %s: %v", iter.Key(), err)
	}
	return seq, nil
}

// eventKey zero pads the sequence so keys sort numerically.
func eventKey(seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", eventPrefix, seq))
}
