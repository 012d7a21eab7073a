package rules

import (
	"cstrict/internal/parser"
	"cstrict/internal/token"
)

// callSite is an identifier directly followed by '(' inside a statement.
type callSite struct {
	NameIdx int
	LParen  int
	Name    string
}

// sigNext returns the next non-comment token index at or after i.
func sigNext(toks []token.Token, i int) int {
	for i < len(toks) && toks[i].IsComment() {
		i++
	}
	return i
}

// callSitesIn scans the inclusive token range of one statement for call
// shapes. Casts and parenthesized expressions do not match because the
// name token must be an identifier.
func callSitesIn(toks []token.Token, first, last int) []callSite {
	var out []callSite
	for i := first; i <= last && i < len(toks); i++ {
		if toks[i].Kind != token.Ident {
			continue
		}
		j := sigNext(toks, i+1)
		if j <= last && toks[j].Kind == token.LParen {
			out = append(out, callSite{NameIdx: i, LParen: j, Name: toks[i].Text})
		}
	}
	return out
}

// matchParen returns the index of the ')' closing the '(' at lparen, or
// -1 when the range ends first.
func matchParen(toks []token.Token, lparen int) int {
	depth := 0
	for i := lparen; i < len(toks); i++ {
		switch toks[i].Kind {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				return i
			}
		case token.EOF:
			return -1
		}
	}
	return -1
}

// argRanges splits the tokens between a call's parens on top-level
// commas. Each range is inclusive and holds at least one token.
func argRanges(toks []token.Token, lparen int) [][2]int {
	rparen := matchParen(toks, lparen)
	if rparen < 0 {
		return nil
	}
	var out [][2]int
	depth := 0
	start := -1
	for i := lparen + 1; i < rparen; i++ {
		switch toks[i].Kind {
		case token.LParen, token.LBracket, token.LBrace:
			depth++
		case token.RParen, token.RBracket, token.RBrace:
			depth--
		case token.Comma:
			if depth == 0 {
				if start >= 0 {
					out = append(out, [2]int{start, i - 1})
				}
				start = -1
				continue
			}
		}
		if start < 0 && !toks[i].IsComment() {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, [2]int{start, rparen - 1})
	}
	return out
}

// soleIdent returns the identifier when the range holds exactly one
// significant token and it is an identifier.
func soleIdent(toks []token.Token, rng [2]int) (string, int, bool) {
	idx := -1
	for i := rng[0]; i <= rng[1]; i++ {
		if toks[i].IsComment() {
			continue
		}
		if idx >= 0 {
			return "", -1, false
		}
		idx = i
	}
	if idx < 0 || toks[idx].Kind != token.Ident {
		return "", -1, false
	}
	return toks[idx].Text, idx, true
}

// stmtText joins the significant token texts of a statement with single
// spaces, for light pattern matching in messages.
func stmtText(toks []token.Token, s *parser.Stmt) string {
	out := ""
	for i := s.First; i <= s.Last && i < len(toks); i++ {
		if toks[i].IsComment() {
			continue
		}
		if out != "" {
			out += " "
		}
		out += toks[i].Text
	}
	return out
}

// rangeHasIdent reports whether the inclusive token range contains the
// given identifier text.
func rangeHasIdent(toks []token.Token, first, last int, name string) bool {
	for i := first; i <= last && i < len(toks); i++ {
		if toks[i].Kind == token.Ident && toks[i].Text == name {
			return true
		}
	}
	return false
}
