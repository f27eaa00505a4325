package book

import "encoding/json"

// Node is one position in a per-color move-prefix tree. Children are keyed
// by the UCI move leaving the position; GameIDs lists every linked game
// whose play passed through it.
type Node struct {
	GameIDs  []int64
	Children map[string]*Node
}

func NewNode() *Node {
	return &Node{Children: make(map[string]*Node)}
}

func (n *Node) child(move string) *Node {
	c, ok := n.Children[move]
	if !ok {
		c = NewNode()
		n.Children[move] = c
	}
	return c
}

// MarshalJSON flattens the node into {"game_ids":[...], "<uci>":{...}}.
// The game_ids key is omitted while empty, mirroring nodes that were
// created as children but never recorded against a game. Object keys are
// emitted sorted, so identical trees serialize byte-identically.
func (n *Node) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(n.Children)+1)
	if len(n.GameIDs) > 0 {
		m["game_ids"] = n.GameIDs
	}
	for move, child := range n.Children {
		m[move] = child
	}
	return json.Marshal(m)
}
