package cfg

import (
	"fmt"

	"cstrict/internal/diag"
	"cstrict/internal/parser"
	"cstrict/internal/token"
)

// Build derives the control-flow graph of one function from its flat
// statement skeleton. Unresolved goto targets are reported through r,
// never surfaced as a build failure.
func Build(fn *parser.Function, r diag.Reporter) *Graph {
	g := &Graph{Func: fn, Labels: map[string]BlockID{}}
	b := &builder{g: g, body: fn.Body, r: r}

	entry := g.newBlock()
	g.Entry = entry.ID
	last := b.seq(0, len(fn.Body), entry, loopCtx{brk: NoBlock, cont: NoBlock})

	exit := g.newBlock()
	exit.Term = TermExit
	g.Exit = exit.ID
	g.addEdge(last.ID, g.Exit)
	for _, blk := range g.Blocks {
		if blk.Term == TermReturn {
			g.addEdge(blk.ID, g.Exit)
		}
	}

	b.resolveGotos()
	g.markCleanup()
	return g
}

type pendingGoto struct {
	block BlockID
	label string
	stmt  int
}

// loopCtx carries the targets break and continue jump to.
type loopCtx struct {
	brk  BlockID
	cont BlockID
}

type builder struct {
	g     *Graph
	body  []parser.Stmt
	r     diag.Reporter
	gotos []pendingGoto
}

// seq lowers the statements in [lo, hi) starting from cur and returns
// the open block control falls out of. Block-delimiter entries are
// markers only; nesting is recovered through extent.
func (b *builder) seq(lo, hi int, cur *Block, ctx loopCtx) *Block {
	i := lo
	for i < hi {
		s := &b.body[i]
		switch s.Kind {
		case parser.StmtBlockStart, parser.StmtBlockEnd:
			i++

		case parser.StmtReturn:
			cur.Stmts = append(cur.Stmts, i)
			cur.Term = TermReturn
			cur = b.g.newBlock()
			i++

		case parser.StmtGoto:
			cur.Stmts = append(cur.Stmts, i)
			cur.Term = TermGoto
			b.gotos = append(b.gotos, pendingGoto{block: cur.ID, label: s.Label, stmt: i})
			cur = b.g.newBlock()
			i++

		case parser.StmtBreak:
			cur.Stmts = append(cur.Stmts, i)
			cur.Term = TermGoto
			if ctx.brk != NoBlock {
				b.g.addEdge(cur.ID, ctx.brk)
			}
			cur = b.g.newBlock()
			i++

		case parser.StmtContinue:
			cur.Stmts = append(cur.Stmts, i)
			cur.Term = TermGoto
			if ctx.cont != NoBlock {
				b.g.addEdge(cur.ID, ctx.cont)
			}
			cur = b.g.newBlock()
			i++

		case parser.StmtLabel:
			nb := b.g.newBlock()
			nb.Label = s.Label
			if _, dup := b.g.Labels[s.Label]; !dup {
				b.g.Labels[s.Label] = nb.ID
			}
			b.g.addEdge(cur.ID, nb.ID)
			nb.Stmts = append(nb.Stmts, i)
			cur = nb
			i++

		case parser.StmtCond:
			switch s.Head {
			case token.KwIf:
				i, cur = b.ifStmt(i, cur, ctx)
			case token.KwSwitch:
				i, cur = b.switchStmt(i, cur, ctx)
			default:
				// An else header with no preceding if; keep the
				// statement visible and move on.
				cur.Stmts = append(cur.Stmts, i)
				i++
			}

		case parser.StmtLoop:
			switch {
			case s.Tail:
				cur.Stmts = append(cur.Stmts, i)
				i++
			case s.Head == token.KwDo:
				i, cur = b.doStmt(i, cur, ctx)
			default:
				i, cur = b.loopStmt(i, cur, ctx)
			}

		default:
			cur.Stmts = append(cur.Stmts, i)
			i++
		}
	}
	return cur
}

// extent returns the exclusive end index of the statement unit starting
// at i: a braced region runs to its matching close, an if consumes its
// else chain, a do consumes its tail while.
func (b *builder) extent(i int) int {
	if i >= len(b.body) {
		return i
	}
	s := &b.body[i]
	switch s.Kind {
	case parser.StmtBlockStart:
		depth := 0
		for j := i; j < len(b.body); j++ {
			switch b.body[j].Kind {
			case parser.StmtBlockStart:
				depth++
			case parser.StmtBlockEnd:
				depth--
				if depth == 0 {
					return j + 1
				}
			}
		}
		return len(b.body)

	case parser.StmtCond:
		end := b.extent(i + 1)
		if s.Head == token.KwIf && end < len(b.body) {
			e := &b.body[end]
			if e.Kind == parser.StmtCond && e.Head == token.KwElse {
				end = b.extent(end + 1)
			}
		}
		return end

	case parser.StmtLoop:
		if s.Tail {
			return i + 1
		}
		end := b.extent(i + 1)
		if s.Head == token.KwDo && end < len(b.body) {
			e := &b.body[end]
			if e.Kind == parser.StmtLoop && e.Tail {
				end++
			}
		}
		return end

	default:
		return i + 1
	}
}

func (b *builder) ifStmt(i int, cur *Block, ctx loopCtx) (int, *Block) {
	cur.Stmts = append(cur.Stmts, i)
	cur.Term = TermIf
	bodyLo := i + 1
	bodyHi := b.extent(bodyLo)

	thenEntry := b.g.newBlock()
	b.g.addEdge(cur.ID, thenEntry.ID)
	thenExit := b.seq(bodyLo, bodyHi, thenEntry, ctx)

	end := bodyHi
	var elseExit *Block
	if bodyHi < len(b.body) {
		e := &b.body[bodyHi]
		if e.Kind == parser.StmtCond && e.Head == token.KwElse {
			elseEntry := b.g.newBlock()
			elseEntry.Stmts = append(elseEntry.Stmts, bodyHi)
			b.g.addEdge(cur.ID, elseEntry.ID)
			ebHi := b.extent(bodyHi + 1)
			elseExit = b.seq(bodyHi+1, ebHi, elseEntry, ctx)
			end = ebHi
		}
	}

	join := b.g.newBlock()
	b.g.addEdge(thenExit.ID, join.ID)
	if elseExit != nil {
		b.g.addEdge(elseExit.ID, join.ID)
	} else {
		b.g.addEdge(cur.ID, join.ID)
	}
	return end, join
}

func (b *builder) switchStmt(i int, cur *Block, ctx loopCtx) (int, *Block) {
	cur.Stmts = append(cur.Stmts, i)
	cur.Term = TermSwitch
	lo := i + 1
	hi := b.extent(lo)

	groupLo, groupHi := lo, hi
	if groupLo < groupHi && b.body[groupLo].Kind == parser.StmtBlockStart {
		groupLo++
		groupHi--
	}

	// Case labels at the top level of the switch body separate groups;
	// extent hops over nested units so inner switches do not bleed in.
	var bounds []int
	for j := groupLo; j < groupHi; {
		if b.body[j].Kind == parser.StmtCase {
			bounds = append(bounds, j)
			j++
		} else {
			j = b.extent(j)
		}
	}

	join := b.g.newBlock()
	inner := loopCtx{brk: join.ID, cont: ctx.cont}
	hasDefault := false
	var prevExit *Block
	for k, start := range bounds {
		end := groupHi
		if k+1 < len(bounds) {
			end = bounds[k+1]
		}
		caseBlk := b.g.newBlock()
		caseBlk.Stmts = append(caseBlk.Stmts, start)
		b.g.addEdge(cur.ID, caseBlk.ID)
		if b.body[start].Label == "default" {
			hasDefault = true
		}
		if prevExit != nil {
			b.g.addEdge(prevExit.ID, caseBlk.ID)
		}
		prevExit = b.seq(start+1, end, caseBlk, inner)
	}
	if prevExit != nil {
		b.g.addEdge(prevExit.ID, join.ID)
	}
	if !hasDefault {
		b.g.addEdge(cur.ID, join.ID)
	}
	return hi, join
}

// loopStmt lowers for and head-tested while loops.
func (b *builder) loopStmt(i int, cur *Block, ctx loopCtx) (int, *Block) {
	head := b.g.newBlock()
	head.Stmts = append(head.Stmts, i)
	head.Term = TermIf
	b.g.addEdge(cur.ID, head.ID)

	bodyLo := i + 1
	bodyHi := b.extent(bodyLo)

	bodyEntry := b.g.newBlock()
	b.g.addEdge(head.ID, bodyEntry.ID)
	join := b.g.newBlock()
	inner := loopCtx{brk: join.ID, cont: head.ID}
	bodyExit := b.seq(bodyLo, bodyHi, bodyEntry, inner)
	b.g.addEdge(bodyExit.ID, head.ID)
	b.g.addEdge(head.ID, join.ID)
	return bodyHi, join
}

// doStmt lowers a do-while: the body always runs once, the tail test
// loops back to the body entry.
func (b *builder) doStmt(i int, cur *Block, ctx loopCtx) (int, *Block) {
	cur.Stmts = append(cur.Stmts, i)
	bodyLo := i + 1
	bodyHi := b.extent(bodyLo)

	bodyEntry := b.g.newBlock()
	b.g.addEdge(cur.ID, bodyEntry.ID)
	cond := b.g.newBlock()
	cond.Term = TermIf
	join := b.g.newBlock()

	inner := loopCtx{brk: join.ID, cont: cond.ID}
	bodyExit := b.seq(bodyLo, bodyHi, bodyEntry, inner)
	b.g.addEdge(bodyExit.ID, cond.ID)

	end := bodyHi
	if bodyHi < len(b.body) {
		t := &b.body[bodyHi]
		if t.Kind == parser.StmtLoop && t.Tail {
			cond.Stmts = append(cond.Stmts, bodyHi)
			end = bodyHi + 1
		}
	}
	b.g.addEdge(cond.ID, bodyEntry.ID)
	b.g.addEdge(cond.ID, join.ID)
	return end, join
}

func (b *builder) resolveGotos() {
	for _, pg := range b.gotos {
		if target, ok := b.g.Labels[pg.label]; ok {
			b.g.addEdge(pg.block, target)
			continue
		}
		st := &b.body[pg.stmt]
		diag.ReportMust(b.r, diag.FuncUnresolvedGoto, st.Span,
			fmt.Sprintf("goto target %q does not name a label in this function", pg.label)).Emit()
	}
}
