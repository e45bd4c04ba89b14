package contagion

import (
	"fmt"
	"strconv"

	"github.com/awalterschulze/gographviz"
)

const renderGraphName = "contagion"

// RenderDOT writes n as a DOT digraph. When res is given, final equities are
// shown and the trigger and affected banks are highlighted.
func RenderDOT(n *Network, res *CascadeResult) (string, error) {
	if n == nil {
		return "", fmt.Errorf("network is nil")
	}

	g := gographviz.NewEscape()
	if err := g.SetName(renderGraphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	for _, b := range n.Banks() {
		equity := b.Equity
		attrs := map[string]string{"shape": "box"}
		if res != nil {
			if eq, ok := res.Equity[b.ID]; ok {
				equity = eq
			}
			switch {
			case b.ID == res.Trigger:
				attrs["style"] = "filled"
				attrs["fillcolor"] = "firebrick"
			case res.IsAffected(b.ID):
				attrs["style"] = "filled"
				attrs["fillcolor"] = "orange"
			}
		}
		attrs["label"] = fmt.Sprintf(`%s\n%.2f`, displayName(b), equity)

		if err := g.AddNode(renderGraphName, strconv.Itoa(b.ID), attrs); err != nil {
			return "", err
		}
	}

	for _, e := range n.Exposures() {
		attrs := map[string]string{"label": strconv.FormatFloat(e.Amount, 'f', 2, 64)}
		if err := g.AddEdge(strconv.Itoa(e.From), strconv.Itoa(e.To), true, attrs); err != nil {
			return "", err
		}
	}

	return g.String(), nil
}

func displayName(b Bank) string {
	if b.Name != "" {
		return b.Name
	}
	return "bank " + strconv.Itoa(b.ID)
}
