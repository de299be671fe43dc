package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/zones/internal/ir"
)

// ParseConstraint parses the textual constraint syntax
//
//	name [- name] op int
//
// where op is one of < <= == >= >. Whitespace between tokens is optional
// and the bound may be negative: "x<=5", "x - y < -2", "y >= 1".
//
// Names are not checked against any clock list; that is Validate's job.
func ParseConstraint(text string) (ir.ConstraintSpec, error) {
	p := &constraintParser{src: text}
	c, err := p.parse()
	if err != nil {
		return ir.ConstraintSpec{}, fmt.Errorf("constraint %q: %w", text, err)
	}
	return c, nil
}

type constraintParser struct {
	src string
	pos int
}

func (p *constraintParser) parse() (ir.ConstraintSpec, error) {
	var c ir.ConstraintSpec

	left, err := p.name()
	if err != nil {
		return c, err
	}
	c.Left = left

	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		right, err := p.name()
		if err != nil {
			return c, err
		}
		c.Right = right
	}

	op, err := p.op()
	if err != nil {
		return c, err
	}
	c.Op = op

	bound, err := p.integer()
	if err != nil {
		return c, err
	}
	c.Bound = bound

	p.skipSpace()
	if p.pos < len(p.src) {
		return c, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos:], p.pos)
	}
	return c, nil
}

func (p *constraintParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *constraintParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

// name reads a clock identifier: a letter or underscore followed by
// letters, digits or underscores.
func (p *constraintParser) name() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r, size := utf8.DecodeRuneInString(p.src[p.pos:])
		if r == '_' || unicode.IsLetter(r) || (p.pos > start && (unicode.IsDigit(r) || unicode.IsMark(r))) {
			p.pos += size
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("expected clock name at offset %d", start)
	}
	return norm.NFC.String(p.src[start:p.pos]), nil
}

func (p *constraintParser) op() (string, error) {
	p.skipSpace()
	for _, op := range []string{ir.OpLE, ir.OpGE, ir.OpEQ, ir.OpLT, ir.OpGT} {
		if strings.HasPrefix(p.src[p.pos:], op) {
			p.pos += len(op)
			return op, nil
		}
	}
	return "", fmt.Errorf("expected one of < <= == >= > at offset %d", p.pos)
}

func (p *constraintParser) integer() (int64, error) {
	p.skipSpace()
	start := p.pos
	if p.peek() == '-' || p.peek() == '+' {
		p.pos++
	}
	for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
		p.pos++
	}
	n, err := strconv.ParseInt(p.src[start:p.pos], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected integer bound at offset %d", start)
	}
	return n, nil
}
