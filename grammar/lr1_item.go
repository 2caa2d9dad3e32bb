package grammar

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

// lrItemID identifies an LR(1) item by value: production, dot position, and
// lookahead symbol.
type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

// lrItemCoreID identifies the lookahead-free core of an item: production and
// dot position only. Items sharing a core belong to the same kernel entry
// during LALR merging.
type lrItemCoreID [32]byte

type lrItem struct {
	id   lrItemID
	core lrItemCoreID
	prod productionID

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	// lookAhead is a single terminal symbol. Two items with an equal core but
	// different lookaheads are distinct items.
	lookAhead symbol.Symbol

	// When initial is true, the LHS of the production is the augmented start
	// symbol and dot is 0. It looks like S' →・S.
	initial bool

	// When reducible is true, the item looks like E → E + T・.
	reducible bool

	// When kernel is true, the item is a kernel item.
	kernel bool
}

func newLRItem(prod *production, dot int, lookAhead symbol.Symbol) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}
	if dot < 0 || dot > len(prod.rhs) {
		return nil, fmt.Errorf("dot must be between 0 and %v", len(prod.rhs))
	}
	if !lookAhead.IsTerminal() {
		return nil, fmt.Errorf("a lookahead symbol must be a terminal symbol; passed: %v", lookAhead)
	}

	var core lrItemCoreID
	{
		b := []byte{}
		b = append(b, prod.id[:]...)
		bDot := make([]byte, 8)
		binary.LittleEndian.PutUint64(bDot, uint64(dot))
		b = append(b, bDot...)
		core = sha256.Sum256(b)
	}

	var id lrItemID
	{
		b := []byte{}
		b = append(b, core[:]...)
		b = append(b, lookAhead.Byte()...)
		id = sha256.Sum256(b)
	}

	dottedSymbol := symbol.SymbolNil
	if dot < len(prod.rhs) {
		dottedSymbol = prod.rhs[dot]
	}

	initial := false
	if prod.lhs.IsStart() && dot == 0 {
		initial = true
	}

	reducible := false
	if dot == len(prod.rhs) {
		reducible = true
	}

	kernel := false
	if initial || dot > 0 {
		kernel = true
	}

	return &lrItem{
		id:           id,
		core:         core,
		prod:         prod.id,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		lookAhead:    lookAhead,
		initial:      initial,
		reducible:    reducible,
		kernel:       kernel,
	}, nil
}

func sortItems(items []*lrItem) {
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].id[:], items[j].id[:]) < 0
	})
}

// stateID identifies a state of the canonical LR(1) collection by the value
// of its item set, lookaheads included. Subset reuse during the collection
// build relies on this identity.
type stateID [32]byte

func genStateID(items []*lrItem) stateID {
	b := []byte{}
	for _, item := range items {
		b = append(b, item.id[:]...)
	}
	return sha256.Sum256(b)
}

// kernelID identifies the kernel of a state with the lookaheads dropped.
// LR(1) states sharing a kernelID merge into one LALR(1) state.
type kernelID [32]byte

func (id kernelID) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(id[:]))
}

func genKernelID(items []*lrItem) kernelID {
	cores := [][]byte{}
	seen := map[lrItemCoreID]struct{}{}
	for _, item := range items {
		if !item.kernel {
			continue
		}
		if _, ok := seen[item.core]; ok {
			continue
		}
		seen[item.core] = struct{}{}
		core := item.core
		cores = append(cores, core[:])
	}
	sort.Slice(cores, func(i, j int) bool {
		return bytes.Compare(cores[i], cores[j]) < 0
	})

	b := []byte{}
	for _, core := range cores {
		b = append(b, core...)
	}
	return sha256.Sum256(b)
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

func (n stateNum) next() stateNum {
	return stateNum(n + 1)
}
