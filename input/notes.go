// Package input turns agent notes into the agent specs the simulation runs
// on. Two forms are supported: the plain-text notes format and a YAML agent
// list.
package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/keepaway/sim"
)

// A ParseError reports malformed notes. Line is 1-based.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

const (
	itemsPrefix     = "Starting items:"
	operationPrefix = "Operation:"
	testPrefix      = "Test: divisible by"
	ifTruePrefix    = "If true: throw to monkey"
	ifFalsePrefix   = "If false: throw to monkey"
)

type parser struct {
	scanner *bufio.Scanner
	line    int
	text    string
	eof     bool
}

// Parse reads agent blocks separated by blank lines. Destination indices are
// not checked against the number of agents; sim.NewRegistry does that.
func Parse(r io.Reader) ([]sim.AgentSpec, error) {
	p := &parser{scanner: bufio.NewScanner(r)}

	var specs []sim.AgentSpec

	for {
		p.skipBlank()
		if p.eof {
			break
		}

		spec, err := p.block(len(specs))
		if err != nil {
			return nil, err
		}

		specs = append(specs, spec)
	}

	if err := p.scanner.Err(); err != nil {
		return nil, err
	}

	if len(specs) == 0 {
		return nil, &ParseError{Line: p.line, Msg: "no agents found"}
	}

	return specs, nil
}

// ParseString is Parse over a string.
func ParseString(s string) ([]sim.AgentSpec, error) {
	return Parse(strings.NewReader(s))
}

func (p *parser) next() bool {
	if !p.scanner.Scan() {
		p.eof = true
		p.text = ""

		return false
	}

	p.line++
	p.text = strings.TrimSpace(strings.TrimSuffix(p.scanner.Text(), "\r"))

	return true
}

func (p *parser) skipBlank() {
	for p.next() {
		if p.text != "" {
			return
		}
	}
}

func (p *parser) fail(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// expect advances to the next line and strips prefix from it.
func (p *parser) expect(prefix string) (string, error) {
	if !p.next() || p.text == "" {
		return "", p.fail("expected %q", prefix)
	}

	rest, ok := strings.CutPrefix(p.text, prefix)
	if !ok {
		return "", p.fail("expected %q, got %q", prefix, p.text)
	}

	return strings.TrimSpace(rest), nil
}

func (p *parser) block(index int) (sim.AgentSpec, error) {
	var spec sim.AgentSpec

	if err := p.header(index); err != nil {
		return spec, err
	}

	rest, err := p.expect(itemsPrefix)
	if err != nil {
		return spec, err
	}

	spec.InitialItems, err = parseItems(rest)
	if err != nil {
		return spec, p.fail("%v", err)
	}

	rest, err = p.expect(operationPrefix)
	if err != nil {
		return spec, err
	}

	spec.Operation, err = ParseOperation(rest)
	if err != nil {
		return spec, p.fail("%v", err)
	}

	rest, err = p.expect(testPrefix)
	if err != nil {
		return spec, err
	}

	spec.Divisor, err = strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return spec, p.fail("invalid divisor %q", rest)
	}

	spec.TrueDestination, err = p.destination(ifTruePrefix)
	if err != nil {
		return spec, err
	}

	spec.FalseDestination, err = p.destination(ifFalsePrefix)
	if err != nil {
		return spec, err
	}

	return spec, nil
}

func (p *parser) header(index int) error {
	name, ok := strings.CutSuffix(p.text, ":")
	if !ok {
		return p.fail("expected agent header, got %q", p.text)
	}

	fields := strings.Fields(name)
	if len(fields) != 2 || (fields[0] != "Monkey" && fields[0] != "Agent") {
		return p.fail("expected agent header, got %q", p.text)
	}

	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return p.fail("invalid agent index %q", fields[1])
	}

	if n != index {
		return p.fail("agent %d found where agent %d was expected", n, index)
	}

	return nil
}

func (p *parser) destination(prefix string) (sim.AgentID, error) {
	rest, err := p.expect(prefix)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, p.fail("invalid destination %q", rest)
	}

	return sim.AgentID(n), nil
}

func parseItems(s string) ([]uint64, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	items := make([]uint64, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)

		v, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid item %q", part)
		}

		items = append(items, v)
	}

	return items, nil
}

// ParseOperation parses "new = old * 19", "old + old" and the like. The
// leading "new =" is optional.
func ParseOperation(expr string) (sim.Operation, error) {
	expr = strings.TrimSpace(expr)
	if rest, ok := strings.CutPrefix(expr, "new"); ok {
		rest = strings.TrimSpace(rest)

		rest, ok = strings.CutPrefix(rest, "=")
		if !ok {
			return sim.Operation{}, fmt.Errorf("invalid operation %q", expr)
		}

		expr = rest
	}

	fields := strings.Fields(expr)
	if len(fields) != 3 || fields[0] != "old" {
		return sim.Operation{}, fmt.Errorf("invalid operation %q", expr)
	}

	operator, operand := fields[1], fields[2]

	if operand == "old" {
		switch operator {
		case "+":
			return sim.Double(), nil
		case "*":
			return sim.Square(), nil
		}

		return sim.Operation{}, fmt.Errorf("unsupported operator %q", operator)
	}

	n, err := strconv.ParseUint(operand, 10, 64)
	if err != nil {
		return sim.Operation{}, fmt.Errorf("invalid operand %q", operand)
	}

	switch operator {
	case "+":
		return sim.Add(n), nil
	case "*":
		return sim.Multiply(n), nil
	}

	return sim.Operation{}, fmt.Errorf("unsupported operator %q", operator)
}
