package model

import (
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// superclassCycles finds the classes whose superclass chain loops back on
// itself. Every class has at most one superclass, so each strongly
// connected component with more than one node is a simple cycle.
func superclassCycles(classes []*Class, superclass []*Class) [][]*Class {
	g := simple.NewDirectedGraph()
	for _, c := range classes {
		g.AddNode(simple.Node(c.id))
	}
	for _, c := range classes {
		if sup := superclass[c.id]; sup != nil {
			g.SetEdge(g.NewEdge(simple.Node(c.id), simple.Node(sup.id)))
		}
	}

	var cycles [][]*Class
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) < 2 {
			continue
		}
		cycle := make([]*Class, len(scc))
		for i, n := range scc {
			cycle[i] = classes[n.ID()]
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}
