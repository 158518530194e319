package aig

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteAAG serializes the circuit in the AIGER ASCII format, symbol
// table included.
func (c Circuit) WriteAAG(w io.Writer) error {
	f := c.Flatten()
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "aag %d %d %d %d %d\n", f.MaxVar(), len(f.Inputs), len(f.Latches), len(f.Outputs), len(f.Ands))
	for i := range f.Inputs {
		fmt.Fprintf(bw, "%d\n", 2*(uint(i)+1))
	}
	base := uint(len(f.Inputs))
	for i, l := range f.Latches {
		if l.Init {
			fmt.Fprintf(bw, "%d %d 1\n", 2*(base+uint(i)+1), l.Next)
		} else {
			fmt.Fprintf(bw, "%d %d\n", 2*(base+uint(i)+1), l.Next)
		}
	}
	for _, o := range f.Outputs {
		fmt.Fprintf(bw, "%d\n", o.Lit)
	}
	base += uint(len(f.Latches))
	for i, g := range f.Ands {
		fmt.Fprintf(bw, "%d %d %d\n", 2*(base+uint(i)+1), g.Lhs, g.Rhs)
	}
	for i, name := range f.Inputs {
		fmt.Fprintf(bw, "i%d %s\n", i, name)
	}
	for i, l := range f.Latches {
		fmt.Fprintf(bw, "l%d %s\n", i, l.Name)
	}
	for i, o := range f.Outputs {
		fmt.Fprintf(bw, "o%d %s\n", i, o.Name)
	}
	return bw.Flush()
}

// Write serializes the circuit in AIGER ASCII format to a file.
func (c Circuit) Write(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return c.WriteAAG(file)
}

// ParseAAG builds a circuit from an AIGER ASCII description.
func ParseAAG(src string) (Circuit, error) {
	sc := bufio.NewScanner(strings.NewReader(src))
	line := func() (string, bool) {
		for sc.Scan() {
			return sc.Text(), true
		}
		return "", false
	}

	header, ok := line()
	if !ok {
		return Circuit{}, fmt.Errorf("%w: empty description", ErrBadFormat)
	}
	fields := strings.Fields(header)
	if len(fields) != 6 || fields[0] != "aag" {
		return Circuit{}, fmt.Errorf("%w: bad header %q", ErrBadFormat, header)
	}
	counts := make([]uint, 5)
	for i, fd := range fields[1:] {
		n, err := strconv.ParseUint(fd, 10, 32)
		if err != nil {
			return Circuit{}, fmt.Errorf("%w: bad header %q", ErrBadFormat, header)
		}
		counts[i] = uint(n)
	}
	maxVar, nbIn, nbLatch, nbOut, nbAnd := counts[0], counts[1], counts[2], counts[3], counts[4]
	if maxVar < nbIn+nbLatch+nbAnd {
		return Circuit{}, fmt.Errorf("%w: header counts exceed maximum variable", ErrBadFormat)
	}

	parseLit := func(fd string) (uint, error) {
		n, err := strconv.ParseUint(fd, 10, 32)
		if err != nil || uint(n) > 2*maxVar+1 {
			return 0, fmt.Errorf("%w: bad literal %q", ErrBadFormat, fd)
		}
		return uint(n), nil
	}

	inputNodes := make([]*Node, nbIn)
	latchNodes := make([]*Node, nbLatch)
	vars := map[uint]Ref{0: False()}

	for i := uint(0); i < nbIn; i++ {
		raw, ok := line()
		if !ok {
			return Circuit{}, fmt.Errorf("%w: truncated input section", ErrBadFormat)
		}
		lit, err := parseLit(raw)
		if err != nil {
			return Circuit{}, err
		}
		if lit == 0 || lit&1 == 1 {
			return Circuit{}, fmt.Errorf("%w: input literal %d", ErrBadFormat, lit)
		}
		if _, ok := vars[lit/2]; ok {
			return Circuit{}, fmt.Errorf("%w: variable %d defined twice", ErrBadFormat, lit/2)
		}
		inputNodes[i] = NewInput()
		vars[lit/2] = inputNodes[i].Ref()
	}

	type latchRow struct {
		next uint
		init bool
	}
	latchRows := make([]latchRow, nbLatch)
	for i := uint(0); i < nbLatch; i++ {
		raw, ok := line()
		if !ok {
			return Circuit{}, fmt.Errorf("%w: truncated latch section", ErrBadFormat)
		}
		fds := strings.Fields(raw)
		if len(fds) != 2 && len(fds) != 3 {
			return Circuit{}, fmt.Errorf("%w: latch line %q", ErrBadFormat, raw)
		}
		lit, err := parseLit(fds[0])
		if err != nil {
			return Circuit{}, err
		}
		if lit == 0 || lit&1 == 1 {
			return Circuit{}, fmt.Errorf("%w: latch literal %d", ErrBadFormat, lit)
		}
		if _, ok := vars[lit/2]; ok {
			return Circuit{}, fmt.Errorf("%w: variable %d defined twice", ErrBadFormat, lit/2)
		}
		next, err := parseLit(fds[1])
		if err != nil {
			return Circuit{}, err
		}
		var init bool
		if len(fds) == 3 {
			switch fds[2] {
			case "0":
			case "1":
				init = true
			default:
				return Circuit{}, fmt.Errorf("%w: latch initial value %q", ErrBadFormat, fds[2])
			}
		}
		latchNodes[i] = NewLatchNode()
		vars[lit/2] = latchNodes[i].Ref()
		latchRows[i] = latchRow{next: next, init: init}
	}

	outputLits := make([]uint, nbOut)
	for i := uint(0); i < nbOut; i++ {
		raw, ok := line()
		if !ok {
			return Circuit{}, fmt.Errorf("%w: truncated output section", ErrBadFormat)
		}
		lit, err := parseLit(raw)
		if err != nil {
			return Circuit{}, err
		}
		outputLits[i] = lit
	}

	type andRow struct {
		l, r uint
	}
	andRows := map[uint]andRow{}
	for i := uint(0); i < nbAnd; i++ {
		raw, ok := line()
		if !ok {
			return Circuit{}, fmt.Errorf("%w: truncated and section", ErrBadFormat)
		}
		fds := strings.Fields(raw)
		if len(fds) != 3 {
			return Circuit{}, fmt.Errorf("%w: and line %q", ErrBadFormat, raw)
		}
		lhs, err := parseLit(fds[0])
		if err != nil {
			return Circuit{}, err
		}
		if lhs == 0 || lhs&1 == 1 {
			return Circuit{}, fmt.Errorf("%w: and literal %d", ErrBadFormat, lhs)
		}
		if _, dup := vars[lhs/2]; dup {
			return Circuit{}, fmt.Errorf("%w: variable %d defined twice", ErrBadFormat, lhs/2)
		}
		if _, dup := andRows[lhs/2]; dup {
			return Circuit{}, fmt.Errorf("%w: variable %d defined twice", ErrBadFormat, lhs/2)
		}
		l, err := parseLit(fds[1])
		if err != nil {
			return Circuit{}, err
		}
		r, err := parseLit(fds[2])
		if err != nil {
			return Circuit{}, err
		}
		andRows[lhs/2] = andRow{l: l, r: r}
	}

	// resolve gate definitions; and rows may appear in any order
	resolving := map[uint]bool{}
	var resolve func(lit uint) (Ref, error)
	resolve = func(lit uint) (Ref, error) {
		v := lit / 2
		if ref, ok := vars[v]; ok {
			return ref.xor(lit&1 == 1), nil
		}
		row, ok := andRows[v]
		if !ok {
			return Ref{}, fmt.Errorf("%w: undefined variable %d", ErrBadFormat, v)
		}
		if resolving[v] {
			return Ref{}, fmt.Errorf("%w: combinational cycle through variable %d", ErrBadFormat, v)
		}
		resolving[v] = true
		l, err := resolve(row.l)
		if err != nil {
			return Ref{}, err
		}
		r, err := resolve(row.r)
		if err != nil {
			return Ref{}, err
		}
		delete(resolving, v)
		ref := l.And(r)
		vars[v] = ref
		return ref.xor(lit&1 == 1), nil
	}

	// symbol table
	inputNames := make([]string, nbIn)
	latchNames := make([]string, nbLatch)
	outputNames := make([]string, nbOut)
	for {
		raw, ok := line()
		if !ok || raw == "c" {
			break
		}
		fds := strings.SplitN(raw, " ", 2)
		if len(fds) != 2 || len(fds[0]) < 2 {
			return Circuit{}, fmt.Errorf("%w: symbol line %q", ErrBadFormat, raw)
		}
		pos, err := strconv.Atoi(fds[0][1:])
		if err != nil || pos < 0 {
			return Circuit{}, fmt.Errorf("%w: symbol line %q", ErrBadFormat, raw)
		}
		var table []string
		switch fds[0][0] {
		case 'i':
			table = inputNames
		case 'l':
			table = latchNames
		case 'o':
			table = outputNames
		default:
			return Circuit{}, fmt.Errorf("%w: symbol line %q", ErrBadFormat, raw)
		}
		if pos >= len(table) {
			return Circuit{}, fmt.Errorf("%w: symbol position out of range in %q", ErrBadFormat, raw)
		}
		table[pos] = fds[1]
	}

	inputs := make(map[string]*Node, nbIn)
	for i, n := range inputNodes {
		name := inputNames[i]
		if name == "" {
			name = fmt.Sprintf("i%d", i)
		}
		if _, dup := inputs[name]; dup {
			return Circuit{}, fmt.Errorf("%w: input %q", ErrNameClash, name)
		}
		inputs[name] = n
	}
	latches := make(map[string]Latch, nbLatch)
	for i, n := range latchNodes {
		name := latchNames[i]
		if name == "" {
			name = fmt.Sprintf("l%d", i)
		}
		if _, dup := latches[name]; dup {
			return Circuit{}, fmt.Errorf("%w: latch %q", ErrNameClash, name)
		}
		next, err := resolve(latchRows[i].next)
		if err != nil {
			return Circuit{}, err
		}
		latches[name] = Latch{Node: n, Next: next, Init: latchRows[i].init}
	}
	outputs := make(map[string]Ref, nbOut)
	for i, lit := range outputLits {
		name := outputNames[i]
		if name == "" {
			name = fmt.Sprintf("o%d", i)
		}
		if _, dup := outputs[name]; dup {
			return Circuit{}, fmt.Errorf("%w: output %q", ErrNameClash, name)
		}
		ref, err := resolve(lit)
		if err != nil {
			return Circuit{}, err
		}
		outputs[name] = ref
	}

	return Circuit{inputs: inputs, outputs: outputs, latches: latches}, nil
}
