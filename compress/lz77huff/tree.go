package lz77huff

import "fmt"

// treeSize is the capacity of the node arena.
const treeSize = 1024

// prefixCodeNode is a node of the prefix code tree. Child index 0 means
// "no child": index 0 is always the root, which is nobody's child.
type prefixCodeNode struct {
	symbol uint16
	leaf   bool
	child  [2]uint16
}

// prefixCodeTree is a binary trie stored in a fixed-capacity arena.
// Nodes are only ever appended, so a node never precedes its parent.
type prefixCodeTree struct {
	nodes []prefixCodeNode
}

// node returns the node at index i.
func (t *prefixCodeTree) node(i uint16) (*prefixCodeNode, error) {
	if int(i) >= len(t.nodes) {
		return nil, fmt.Errorf("%w: index %d, %d nodes", ErrInvalidTreeNode, i, len(t.nodes))
	}
	return &t.nodes[i], nil
}

// alloc appends a blank node to the arena and returns its index.
func (t *prefixCodeTree) alloc() (uint16, error) {
	if len(t.nodes) >= treeSize {
		return 0, ErrTreeOverflow
	}
	t.nodes = append(t.nodes, prefixCodeNode{})
	return uint16(len(t.nodes) - 1), nil
}

// buildTree reconstructs the canonical Huffman tree from the symbols,
// which must already be sorted by sortSymbols.
func buildTree(symbols []prefixCodeSymbol) (*prefixCodeTree, error) {
	t := &prefixCodeTree{nodes: make([]prefixCodeNode, 1, treeSize)}

	var code uint32
	bits := uint8(1)
	leaves := 0
	for _, s := range symbols {
		if s.length == 0 {
			continue
		}

		code <<= s.length - bits
		bits = s.length
		if err := t.addLeaf(s.symbol, code, bits); err != nil {
			return nil, err
		}

		code++
		leaves++
	}

	if leaves == 0 {
		return nil, fmt.Errorf("%w: code length table defines no symbols", ErrInvalidTreeNode)
	}

	return t, nil
}

// addLeaf inserts symbol at the path given by the low `bits` bits of code,
// most significant bit first.
//
// Code lengths that over-subscribe the code space are rejected: a path that
// runs through an existing leaf, or ends in a slot that is already taken,
// returns ErrInvalidTreeNode instead of replacing the earlier code.
func (t *prefixCodeTree) addLeaf(symbol uint16, code uint32, bits uint8) error {
	leaf, err := t.alloc()
	if err != nil {
		return err
	}
	t.nodes[leaf].symbol = symbol
	t.nodes[leaf].leaf = true

	var idx uint16
	for bits > 1 {
		bits--
		n, err := t.node(idx)
		if err != nil {
			return err
		}

		if n.leaf {
			return fmt.Errorf("%w: code of symbol %d extends a shorter code", ErrInvalidTreeNode, symbol)
		}

		b := (code >> bits) & 1
		next := n.child[b]
		if next == 0 {
			if next, err = t.alloc(); err != nil {
				return err
			}
			t.nodes[idx].child[b] = next
		}

		idx = next
	}

	n, err := t.node(idx)
	if err != nil {
		return err
	}

	if n.leaf || n.child[code&1] != 0 {
		return fmt.Errorf("%w: code of symbol %d is already taken", ErrInvalidTreeNode, symbol)
	}

	n.child[code&1] = leaf
	return nil
}

// decodeSymbol walks the tree one bit at a time until it reaches a leaf.
func (t *prefixCodeTree) decodeSymbol(bs *bitstream) (uint16, error) {
	n, err := t.node(0)
	if err != nil {
		return 0, err
	}

	for !n.leaf {
		bit := bs.lookup(1)
		if err := bs.skip(1); err != nil {
			return 0, err
		}

		next := n.child[bit]
		if next == 0 {
			return 0, fmt.Errorf("%w: no code for bit sequence", ErrInvalidTreeNode)
		}

		if n, err = t.node(next); err != nil {
			return 0, err
		}
	}

	return n.symbol, nil
}
