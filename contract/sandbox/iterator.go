package sandbox

import (
	"bytes"

	"github.com/Calnunes/ZK-Access-Control-System/contract/base"
	"github.com/Calnunes/ZK-Access-Control-System/storage"
)

// xIterator walks raw state entries, deletions included.
type xIterator interface {
	Key() []byte
	Value() *entry
	Next() bool
	Error() error
	Close()
}

// memIterator walks a sorted snapshot of the write set.
type memIterator struct {
	keys   []string
	values []*entry
	idx    int
}

func newMemIterator(keys []string, values []*entry) xIterator {
	return &memIterator{keys: keys, values: values, idx: -1}
}

func (m *memIterator) Key() []byte   { return []byte(m.keys[m.idx]) }
func (m *memIterator) Value() *entry { return m.values[m.idx] }
func (m *memIterator) Error() error  { return nil }
func (m *memIterator) Close()        {}

func (m *memIterator) Next() bool {
	if m.idx+1 >= len(m.keys) {
		return false
	}
	m.idx++
	return true
}

// dbIterator adapts a storage iterator.
type dbIterator struct {
	iter storage.Iterator
}

func newDBIterator(iter storage.Iterator) xIterator {
	return &dbIterator{iter: iter}
}

func (d *dbIterator) Key() []byte {
	return append([]byte(nil), d.iter.Key()...)
}

func (d *dbIterator) Value() *entry {
	return &entry{value: append([]byte(nil), d.iter.Value()...)}
}

func (d *dbIterator) Next() bool   { return d.iter.Next() }
func (d *dbIterator) Error() error { return d.iter.Error() }
func (d *dbIterator) Close()       { d.iter.Release() }

// peekIterator用来辅助multiIterator更容易实现
type peekIterator struct {
	next  bool
	key   []byte
	value *entry

	iter xIterator
}

func newPeekIterator(iter xIterator) *peekIterator {
	p := &peekIterator{
		iter: iter,
	}
	p.fill()
	return p
}

func (p *peekIterator) fill() {
	ok := p.iter.Next()
	if !ok {
		p.next = false
		p.key = nil
		p.value = nil
		return
	}
	p.next = true
	p.key = p.iter.Key()
	p.value = p.iter.Value()
}

func (p *peekIterator) HasNext() bool {
	return p.next
}

func (p *peekIterator) Next() ([]byte, *entry) {
	if !p.HasNext() {
		return nil, nil
	}
	key := p.key
	value := p.value
	p.fill()
	return key, value
}

// Peek向前查询key, value的值但不移动迭代器的指针
func (p *peekIterator) Peek() ([]byte, *entry) {
	if !p.HasNext() {
		return nil, nil
	}
	return p.key, p.value
}

func (p *peekIterator) Error() error {
	return p.iter.Error()
}

func (p *peekIterator) Close() {
	p.next = false
	p.key = nil
	p.value = nil
	p.iter.Close()
}

// multiIterator 按照归并排序合并两个xIterator
// 如果两个xIterator在某次迭代返回同样的Key，选取front的Value
type multiIterator struct {
	front *peekIterator
	back  *peekIterator

	key   []byte
	value *entry
}

func newMultiIterator(front, back xIterator) xIterator {
	return &multiIterator{
		front: newPeekIterator(front),
		back:  newPeekIterator(back),
	}
}

func (m *multiIterator) Key() []byte {
	return m.key
}

func (m *multiIterator) Value() *entry {
	return m.value
}

func (m *multiIterator) Next() bool {
	if !m.front.HasNext() {
		ok := m.back.HasNext()
		m.key, m.value = m.back.Next()
		return ok
	}
	if !m.back.HasNext() {
		ok := m.front.HasNext()
		m.key, m.value = m.front.Next()
		return ok
	}

	k1, _ := m.front.Peek()
	k2, _ := m.back.Peek()
	switch compareBytes(k1, k2) {
	case 0:
		m.key, m.value = m.front.Next()
		m.back.Next()
	case -1:
		m.key, m.value = m.front.Next()
	case 1:
		m.key, m.value = m.back.Next()
	}
	return true
}

func (m *multiIterator) Error() error {
	if err := m.front.Error(); err != nil {
		return err
	}
	return m.back.Error()
}

// Iterator 必须在使用完毕后关闭
func (m *multiIterator) Close() {
	m.front.Close()
	m.back.Close()
}

// stripDelIterator 从迭代器里剔除删除标注
type stripDelIterator struct {
	xIterator
}

func newStripDelIterator(iter xIterator) xIterator {
	return &stripDelIterator{xIterator: iter}
}

func (s *stripDelIterator) Next() bool {
	for s.xIterator.Next() {
		if !s.xIterator.Value().deleted {
			return true
		}
	}
	return false
}

// ContractIterator 把xIterator转换成base.Iterator
type ContractIterator struct {
	xIterator
	prefixLen int
}

func newContractIterator(iter xIterator, prefixLen int) base.Iterator {
	return &ContractIterator{
		xIterator: iter,
		prefixLen: prefixLen,
	}
}

func (c *ContractIterator) Key() []byte {
	return c.xIterator.Key()[c.prefixLen:]
}

func (c *ContractIterator) Value() []byte {
	return c.xIterator.Value().value
}

func compareBytes(k1, k2 []byte) int {
	return bytes.Compare(k1, k2)
}
