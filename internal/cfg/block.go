package cfg

import (
	"cstrict/internal/parser"
	"cstrict/internal/source"
)

type BlockID uint32

// NoBlock marks an absent block reference.
const NoBlock BlockID = ^BlockID(0)

type TermKind uint8

const (
	// TermFall falls through to Succs[0].
	TermFall TermKind = iota
	// TermReturn leaves the function. The synthetic exit block is the
	// only successor.
	TermReturn
	// TermGoto jumps to a label (also used for break/continue edges).
	TermGoto
	// TermIf branches on a condition: Succs[0] taken, Succs[1] not taken.
	TermIf
	// TermSwitch dispatches to case blocks; the last successor is the
	// join (or default) block.
	TermSwitch
	// TermExit terminates the synthetic exit block.
	TermExit
)

func (k TermKind) String() string {
	switch k {
	case TermFall:
		return "fall"
	case TermReturn:
		return "return"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermSwitch:
		return "switch"
	case TermExit:
		return "exit"
	}
	return "unknown"
}

// Block is a basic block: a run of statements with a single terminator.
// Stmts holds indices into the function's flat statement list.
type Block struct {
	ID    BlockID
	Stmts []int
	Term  TermKind
	Succs []BlockID
	Preds []BlockID

	// Label is set when the block starts at a C label statement.
	Label string
	// Cleanup marks a label block recognized as the goto-cleanup exit
	// idiom (multiple goto predecessors funneling into one return).
	Cleanup bool
}

// Empty reports whether the block carries no source statements.
func (b *Block) Empty() bool { return len(b.Stmts) == 0 }

// Graph is the control-flow graph of one function. Blocks[Entry] is the
// function entry; Blocks[Exit] is a synthetic block every return and the
// final fallthrough feed into.
type Graph struct {
	Func   *parser.Function
	Blocks []*Block
	Entry  BlockID
	Exit   BlockID

	// Labels maps label names to their blocks.
	Labels map[string]BlockID
}

func (g *Graph) Block(id BlockID) *Block {
	if id == NoBlock || int(id) >= len(g.Blocks) {
		return nil
	}
	return g.Blocks[id]
}

// StmtAt returns the function statement a block index refers to.
func (g *Graph) StmtAt(idx int) *parser.Stmt {
	return &g.Func.Body[idx]
}

// BlockSpan covers the source range of a block's statements.
func (g *Graph) BlockSpan(b *Block) source.Span {
	if len(b.Stmts) == 0 {
		return source.Span{}
	}
	sp := g.Func.Body[b.Stmts[0]].Span
	for _, idx := range b.Stmts[1:] {
		sp = sp.Cover(g.Func.Body[idx].Span)
	}
	return sp
}

// ReturnBlocks lists every block terminated by an explicit return,
// in block order.
func (g *Graph) ReturnBlocks() []*Block {
	var out []*Block
	for _, b := range g.Blocks {
		if b.Term == TermReturn {
			out = append(out, b)
		}
	}
	return out
}

func (g *Graph) addEdge(from, to BlockID) {
	fb, tb := g.Blocks[from], g.Blocks[to]
	for _, s := range fb.Succs {
		if s == to {
			return
		}
	}
	fb.Succs = append(fb.Succs, to)
	tb.Preds = append(tb.Preds, from)
}

func (g *Graph) newBlock() *Block {
	b := &Block{ID: BlockID(len(g.Blocks)), Term: TermFall}
	g.Blocks = append(g.Blocks, b)
	return b
}
