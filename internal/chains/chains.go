// Package chains enumerates the fixed set of supported networks along with
// their display metadata. The set mirrors the chain-id registry the product
// ships with; it is not user-extensible.
package chains

// Network describes one supported chain: its numeric chain id, the
// human-facing display name, and the accent color used by badges.
type Network struct {
	ID    int
	Name  string
	Color string
}

// DefaultID is the chain selected when the user never picked one.
const DefaultID = 1

var (
	mainnet = Network{ID: 1, Name: "Mainnet", Color: "#56B4AE"}
	ropsten = Network{ID: 3, Name: "Ropsten", Color: "#EE5A8D"}
	rinkeby = Network{ID: 4, Name: "Rinkeby", Color: "#F0C45C"}
	goerli  = Network{ID: 5, Name: "Goerli", Color: "#4C99EB"}
	kovan   = Network{ID: 42, Name: "Kovan", Color: "#6A5FF6"}

	// ordered keeps the presentation order stable across calls.
	ordered = []Network{mainnet, ropsten, rinkeby, goerli, kovan}

	byID = map[int]Network{
		mainnet.ID: mainnet,
		ropsten.ID: ropsten,
		rinkeby.ID: rinkeby,
		goerli.ID:  goerli,
		kovan.ID:   kovan,
	}
)

// ByID returns the network for the given chain id and whether it is one of
// the supported set.
func ByID(id int) (Network, bool) {
	n, ok := byID[id]
	return n, ok
}

// Default returns the network used when no selection was ever persisted.
func Default() Network {
	return mainnet
}

// All returns every supported network in display order.
func All() []Network {
	out := make([]Network, len(ordered))
	copy(out, ordered)
	return out
}
