package vm

// loader.go holds an object loader.

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/coriolis-labs/lc3/internal/log"
)

// Loader takes object code and loads it into the machine's memory.
type Loader struct {
	vm  *LC3
	log *log.Logger
}

// NewLoader creates a new object loader.
func NewLoader(vm *LC3) *Loader {
	return &Loader{
		vm:  vm,
		log: log.DefaultLogger(),
	}
}

// Load loads the object code starting at its origin address.
func (l *Loader) Load(obj ObjectCode) (uint16, error) {
	if len(obj.Code) == 0 {
		return 0, fmt.Errorf("%w: object too small", ErrObjectLoader)
	}

	var (
		addr  = obj.Orig
		count = uint16(0)
	)

	for _, code := range obj.Code {
		if err := l.vm.Mem.store(addr, code); err != nil {
			return count, fmt.Errorf("%w: %w", ErrObjectLoader, err)
		}

		count++
		addr++
	}

	l.log.Debug("Loaded object", "orig", obj.Orig, "words", count)

	return count, nil
}

// ObjectCode is a data structure that holds code and its origin offset in memory. Code may be
// comprised of either instructions or data.
type ObjectCode struct {
	Orig Word
	Code []Word
}

// ReadObjectCode decodes the primary object format: a big-endian origin word followed by the
// image's data words, with no header or section table.
func ReadObjectCode(b []byte) (ObjectCode, error) {
	var obj ObjectCode
	_, err := obj.read(b)

	return obj, err
}

// read loads an object from bytes.
func (obj *ObjectCode) read(b []byte) (int, error) {
	var count int

	if len(b) < 2 {
		return 0, fmt.Errorf("%w: object code too small", ErrObjectLoader)
	}

	in := bytes.NewReader(b)
	err := binary.Read(in, binary.BigEndian, &obj.Orig)

	if err != nil {
		return count, fmt.Errorf("%w: %w", ErrObjectLoader, err)
	}

	count += 2

	obj.Code = make([]Word, len(b)/2-1)
	err = binary.Read(in, binary.BigEndian, obj.Code)

	if err != nil {
		return count, fmt.Errorf("%w: %w", ErrObjectLoader, err)
	}

	count += len(obj.Code) * 2

	return count, nil
}

var ErrObjectLoader = errors.New("loader error")
