// Package flowgraph renders a method body as a graph of basic blocks: maximal
// instruction ranges with a single entry and a single exit. The graph is a
// pure bookkeeping view over an existing instruction sequence; it derives no
// facts and takes no part in the propagation network, but analyses consume it
// to enumerate the instruction ranges their rules work on.
package flowgraph

import (
	"fmt"
	"strings"

	"github.com/pointsto/relnet/pkg/network"
)

// Instruction is the minimal view the graph needs of one instruction in the
// underlying sequence.
type Instruction interface {
	fmt.Stringer

	// Targets returns the indices of explicit branch targets.
	Targets() []int

	// FallsThrough reports whether control may continue to the next
	// instruction in sequence.
	FallsThrough() bool
}

// Inst is a plain instruction value for callers that do not carry their own
// instruction type.
type Inst struct {
	Text     string
	BranchTo []int
	NoFall   bool
}

func (i Inst) String() string     { return i.Text }
func (i Inst) Targets() []int     { return i.BranchTo }
func (i Inst) FallsThrough() bool { return !i.NoFall }

// Block is one basic block: the instruction range [Head, Tail] of the
// enclosing graph, plus its predecessor and successor blocks.
type Block struct {
	index      int
	head, tail int
	preds      []*Block
	succs      []*Block
	graph      *Graph
}

// Index returns the block's position in the graph.
func (b *Block) Index() int { return b.index }

// Head returns the index of the block's first instruction.
func (b *Block) Head() int { return b.head }

// Tail returns the index of the block's last instruction.
func (b *Block) Tail() int { return b.tail }

// Len returns the number of instructions in the block.
func (b *Block) Len() int { return b.tail - b.head + 1 }

// Preds returns the predecessor blocks.
func (b *Block) Preds() []*Block { return b.preds }

// Succs returns the successor blocks.
func (b *Block) Succs() []*Block { return b.succs }

// Instructions returns the block's instruction range as a view into the
// graph's sequence.
func (b *Block) Instructions() []Instruction {
	return b.graph.instructions[b.head : b.tail+1]
}

// String renders the block with its neighbors and instruction range.
func (b *Block) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Block #%d [%d..%d]", b.index, b.head, b.tail)
	fmt.Fprintf(&sb, " preds=%s succs=%s\n", blockIndexList(b.preds), blockIndexList(b.succs))
	for i, in := range b.Instructions() {
		label, _ := b.graph.labels.Lookup(b.head + i)
		fmt.Fprintf(&sb, "  %s: %s\n", label, in)
	}
	return sb.String()
}

func blockIndexList(blocks []*Block) string {
	if len(blocks) == 0 {
		return "[]"
	}
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = fmt.Sprintf("#%d", b.index)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Graph partitions an instruction sequence into basic blocks. Leaders are the
// first instruction, every branch target, and every instruction following a
// branch; a block runs from one leader up to the instruction before the next.
type Graph struct {
	instructions []Instruction
	blocks       []*Block
	blockAt      []*Block
	// labels maps instruction indices to display labels; indices that head a
	// block get a block label, everything else maps to a placeholder (a total
	// mapping, hence lookup-only).
	labels network.Lookup[int, string]
}

// New builds the basic-block graph of an instruction sequence. Branch targets
// must lie within the sequence.
func New(instructions []Instruction) (*Graph, error) {
	if len(instructions) == 0 {
		return nil, fmt.Errorf("empty instruction sequence")
	}

	// Collect leaders.
	leader := make([]bool, len(instructions))
	leader[0] = true
	for i, in := range instructions {
		targets := in.Targets()
		for _, t := range targets {
			if t < 0 || t >= len(instructions) {
				return nil, fmt.Errorf("instruction %d: branch target %d out of range [0,%d)",
					i, t, len(instructions))
			}
			leader[t] = true
		}
		if (len(targets) > 0 || !in.FallsThrough()) && i+1 < len(instructions) {
			leader[i+1] = true
		}
	}

	g := &Graph{
		instructions: instructions,
		blockAt:      make([]*Block, len(instructions)),
	}

	// Cut the sequence at leader boundaries.
	head := 0
	for i := 1; i <= len(instructions); i++ {
		if i == len(instructions) || leader[i] {
			b := &Block{index: len(g.blocks), head: head, tail: i - 1, graph: g}
			g.blocks = append(g.blocks, b)
			for j := head; j < i; j++ {
				g.blockAt[j] = b
			}
			head = i
		}
	}

	// Wire block successors and predecessors.
	for _, b := range g.blocks {
		last := instructions[b.tail]
		if last.FallsThrough() && b.tail+1 < len(instructions) {
			g.link(b, g.blockAt[b.tail+1])
		}
		for _, t := range last.Targets() {
			g.link(b, g.blockAt[t])
		}
	}

	headLabels := make(map[int]string, len(g.blocks))
	for _, b := range g.blocks {
		headLabels[b.head] = fmt.Sprintf("block%d", b.index)
	}
	unnamed := network.Constant[int, string]("???")
	g.labels = network.LookupFunc[int, string](func(i int) (string, bool) {
		if l, ok := headLabels[i]; ok {
			return l, true
		}
		return unnamed.Lookup(i)
	})

	return g, nil
}

func (g *Graph) link(from, to *Block) {
	for _, s := range from.succs {
		if s == to {
			return
		}
	}
	from.succs = append(from.succs, to)
	to.preds = append(to.preds, from)
}

// Blocks returns the blocks in instruction order.
func (g *Graph) Blocks() []*Block {
	ret := make([]*Block, len(g.blocks))
	copy(ret, g.blocks)
	return ret
}

// BlockOf returns the block containing the instruction at the given index.
func (g *Graph) BlockOf(index int) (*Block, error) {
	if index < 0 || index >= len(g.blockAt) {
		return nil, fmt.Errorf("instruction index %d out of range [0,%d)", index, len(g.blockAt))
	}
	return g.blockAt[index], nil
}

// Heads returns the blocks without predecessors (the entry points).
func (g *Graph) Heads() []*Block {
	var ret []*Block
	for _, b := range g.blocks {
		if len(b.preds) == 0 {
			ret = append(ret, b)
		}
	}
	return ret
}

// Tails returns the blocks without successors (the exit points).
func (g *Graph) Tails() []*Block {
	var ret []*Block
	for _, b := range g.blocks {
		if len(b.succs) == 0 {
			ret = append(ret, b)
		}
	}
	return ret
}

// Labels returns the instruction-index labeling used for rendering: block
// heads get their block label, any other index the unnamed placeholder. The
// mapping is total, so it is lookup-only and cannot be enumerated.
func (g *Graph) Labels() network.Enumerable[int, string] {
	return network.NonEnumerable(g.labels)
}

func (g *Graph) String() string {
	var sb strings.Builder
	for _, b := range g.blocks {
		sb.WriteString(b.String())
	}
	return sb.String()
}
