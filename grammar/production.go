package grammar

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mobiusgate/falcata/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

// genProductionID hashes a production's content. The RHS length goes into
// the stream before the symbols so the encoding is self-delimiting.
func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	h := sha256.New()
	h.Write(lhs.Byte())
	var rhsLen [2]byte
	binary.BigEndian.PutUint16(rhsLen[:], uint16(len(rhs)))
	h.Write(rhsLen[:])
	for _, sym := range rhs {
		h.Write(sym.Byte())
	}
	var id productionID
	h.Sum(id[:0])
	return id
}

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

type production struct {
	id  productionID
	num productionNum
	lhs symbol.Symbol
	rhs []symbol.Symbol
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if lhs.IsNil() {
		return nil, fmt.Errorf("LHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		id:  genProductionID(lhs, rhs),
		lhs: lhs,
		rhs: rhs,
	}, nil
}

// isEmpty returns true when a production is an ε-production: its RHS derives
// the empty string directly.
func (p *production) isEmpty() bool {
	return len(p.rhs) == 0
}

// productionSet stores productions in definition order, so every walk over
// the whole grammar is deterministic. The augmented start production always
// receives number 1; the others are numbered by arrival.
type productionSet struct {
	prods   []*production
	byID    map[productionID]*production
	byLHS   map[symbol.Symbol][]*production
	nextNum productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		byID:    map[productionID]*production{},
		byLHS:   map[symbol.Symbol][]*production{},
		nextNum: productionNumMin,
	}
}

func (ps *productionSet) append(prod *production) bool {
	if _, ok := ps.byID[prod.id]; ok {
		return false
	}

	if prod.lhs.IsStart() {
		prod.num = productionNumStart
	} else {
		prod.num = ps.nextNum
		ps.nextNum++
	}

	ps.prods = append(ps.prods, prod)
	ps.byID[prod.id] = prod
	ps.byLHS[prod.lhs] = append(ps.byLHS[prod.lhs], prod)

	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.byID[id]
	return prod, ok
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.byLHS[lhs]
	return prods, ok
}

// all returns the productions in definition order.
func (ps *productionSet) all() []*production {
	return ps.prods
}

func (ps *productionSet) count() int {
	return len(ps.prods)
}
