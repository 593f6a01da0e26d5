package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/oometrics/internal/testutil"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/syntax"
)

func shapes() *syntax.Project {
	shape := testutil.Class("Shape",
		testutil.Field("String name", syntax.Protected),
		testutil.Method("area", syntax.Block(syntax.Return(syntax.Lit("0")))),
	)
	shape.Modifiers |= syntax.Abstract
	circle := testutil.Extends(testutil.Class("Circle",
		testutil.Field("double r"),
		testutil.Method("area", syntax.Block(syntax.Return(syntax.Binary("*", syntax.Ident("r"), syntax.Ident("r"))))),
	), "Shape", "Drawable")
	unit := testutil.Extends(testutil.Class("UnitCircle"), "Circle")
	drawable := testutil.Interface("Drawable", testutil.Method("draw", nil))

	canvas := testutil.Class("Canvas",
		testutil.Field("List<Shape> shapes"),
		testutil.Method("add", syntax.Block(
			syntax.Var("Circle", "c", syntax.New("Circle")),
			syntax.Call(syntax.Ident("Registry"), "register", syntax.Ident("c")),
		)),
		testutil.Class("Layer", testutil.Field("int z")),
	)
	exc := testutil.Extends(testutil.Class("GeometryException"), "RuntimeException")

	return testutil.Project(
		testutil.File("geo", shape, circle, unit, drawable),
		testutil.File("ui", canvas),
		testutil.File("ui", testutil.Class("Registry")),
		testutil.File("", exc),
	)
}

func TestBuildTree(t *testing.T) {
	proj := Build(shapes())

	require.Len(t, proj.Packages(), 3)
	assert.Equal(t, DefaultPackage, proj.Packages()[0].Name())
	assert.Equal(t, "geo", proj.Packages()[1].Name())
	assert.Equal(t, "ui", proj.Packages()[2].Name())

	ui := proj.Packages()[2]
	require.Len(t, ui.Classes(), 3)
	assert.Equal(t, "Canvas", ui.Classes()[0].Name())
	assert.Equal(t, "Canvas.Layer", ui.Classes()[1].Name())
	assert.Equal(t, "ui.Canvas.Layer", ui.Classes()[1].QualifiedName())
	assert.Same(t, ui.Classes()[0], ui.Classes()[1].Outer())

	assert.Len(t, proj.Classes(), 8)
	assert.Len(t, proj.Methods(), 4)
	for i, c := range proj.Index().Classes() {
		assert.Equal(t, uint32(i), c.ID())
	}
}

func TestParents(t *testing.T) {
	proj := Build(shapes())

	for _, pkg := range proj.Packages() {
		assert.Same(t, proj, pkg.Project())
		assert.Equal(t, proj, pkg.Parent())
		for _, c := range pkg.Classes() {
			assert.Same(t, pkg, c.Package())
			for _, m := range c.Methods() {
				assert.Same(t, c, m.Class())
				assert.Equal(t, metric.LevelMethod, m.Level())
				assert.Nil(t, m.Children())
			}
		}
	}
	assert.Nil(t, proj.Parent())
	assert.Len(t, proj.Children(), 3)
}

func TestInheritanceIndex(t *testing.T) {
	proj := Build(shapes())
	ix := proj.Index()

	shape := ix.Lookup("geo.Shape")
	circle := ix.Lookup("geo.Circle")
	unit := ix.Lookup("geo.UnitCircle")
	drawable := ix.Lookup("geo.Drawable")
	exc := ix.Lookup("GeometryException")
	require.NotNil(t, shape)
	require.NotNil(t, exc)

	assert.Same(t, shape, ix.Superclass(circle))
	assert.Len(t, ix.Supertypes(circle), 2)
	assert.Equal(t, 1, ix.NOC(shape))
	assert.Equal(t, 1, ix.NOC(drawable))
	assert.Equal(t, 1, ix.NOC(circle))
	assert.Equal(t, 0, ix.NOC(unit))

	assert.Equal(t, 1, ix.DIT(shape))
	assert.Equal(t, 2, ix.DIT(circle))
	assert.Equal(t, 3, ix.DIT(unit))
	assert.Equal(t, 1, ix.DIT(drawable))
	assert.Equal(t, 2, ix.DIT(exc), "external superclass counts as one link")

	assert.Equal(t, []*Class{circle, shape}, ix.Ancestors(unit))
	assert.ElementsMatch(t, []*Class{circle, unit}, ix.Descendants(shape))
	assert.True(t, ix.IsAncestor(drawable, unit))
	assert.False(t, ix.IsAncestor(unit, shape))
}

func TestInheritanceCycle(t *testing.T) {
	a := testutil.Extends(testutil.Class("A"), "B")
	b := testutil.Extends(testutil.Class("B"), "A")
	proj := Build(testutil.Project(testutil.File("p", a, b)))
	ix := proj.Index()

	ca := ix.Lookup("p.A")
	assert.Equal(t, 2, ix.DIT(ca))
	assert.Len(t, ix.Ancestors(ca), 1)
	assert.Len(t, ix.Descendants(ca), 1)

	require.Len(t, ix.InheritanceCycles(), 1)
	assert.ElementsMatch(t, []*Class{ca, ix.Lookup("p.B")}, ix.InheritanceCycles()[0])
}

func TestInheritanceCycleEntry(t *testing.T) {
	a := testutil.Extends(testutil.Class("A"), "B")
	b := testutil.Extends(testutil.Class("B"), "C")
	c := testutil.Extends(testutil.Class("C"), "A")
	leaf := testutil.Extends(testutil.Class("Leaf"), "A")
	ix := Build(testutil.Project(testutil.File("p", a, b, c, leaf))).Index()

	assert.Equal(t, 3, ix.DIT(ix.Lookup("p.A")))
	assert.Equal(t, 4, ix.DIT(ix.Lookup("p.Leaf")))
	require.Len(t, ix.InheritanceCycles(), 1)
	assert.Len(t, ix.InheritanceCycles()[0], 3)
}

func TestNoInheritanceCycles(t *testing.T) {
	ix := Build(shapes()).Index()
	assert.Empty(t, ix.InheritanceCycles())

	unit := ix.Lookup("geo.UnitCircle")
	ancestors := ix.AncestorSet(unit)
	for _, name := range []string{"geo.Circle", "geo.Shape", "geo.Drawable"} {
		assert.True(t, ancestors.Contains(ix.Lookup(name).ID()), name)
	}
	assert.False(t, ancestors.Contains(unit.ID()))
}

func TestDependencies(t *testing.T) {
	proj := Build(shapes())
	ix := proj.Index()

	canvas := ix.Lookup("ui.Canvas")
	deps := ix.Dependencies(canvas)
	var names []string
	for _, id := range deps.ToArray() {
		names = append(names, ix.Class(id).QualifiedName())
	}
	assert.ElementsMatch(t, []string{"geo.Shape", "geo.Circle", "ui.Registry"}, names)

	circle := ix.Lookup("geo.Circle")
	assert.True(t, ix.DependsOn(canvas, circle))
	assert.True(t, ix.Dependents(circle).Contains(canvas.ID()))
	assert.Nil(t, ix.Class(999))
}

func TestResolve(t *testing.T) {
	p1 := testutil.File("a", testutil.Class("Item"))
	p2 := testutil.File("b", testutil.Class("Item"))
	user := testutil.File("c", testutil.Class("User", testutil.Field("Item item")))
	user.Imports = []string{"b.Item"}
	wild := testutil.File("d", testutil.Class("Wild"))
	wild.Imports = []string{"a.*"}
	local := testutil.File("a", testutil.Class("Local"))

	proj := Build(testutil.Project(p1, p2, user, wild, local))
	ix := proj.Index()

	assert.Equal(t, "b.Item", ix.Resolve("Item", ix.Lookup("c.User")).QualifiedName())
	assert.Equal(t, "a.Item", ix.Resolve("Item", ix.Lookup("d.Wild")).QualifiedName())
	assert.Equal(t, "a.Item", ix.Resolve("Item", ix.Lookup("a.Local")).QualifiedName())
	assert.Equal(t, "a.Item", ix.Resolve("a.Item", nil).QualifiedName())
	assert.Equal(t, "a.Item", ix.Resolve("a.Item[]", nil).QualifiedName())
	assert.Nil(t, ix.Resolve("Item", nil), "ambiguous")
	assert.Nil(t, ix.Resolve("String", nil))
}

func TestIsTypeLike(t *testing.T) {
	assert.True(t, IsTypeLike("Math"))
	assert.True(t, IsTypeLike("T"))
	assert.False(t, IsTypeLike("MAX_VALUE"))
	assert.False(t, IsTypeLike("list"))
	assert.False(t, IsTypeLike(""))
}

func TestSignature(t *testing.T) {
	m := &Method{decl: testutil.Method("put", nil, "String k", "int v")}
	assert.Equal(t, "put/2", m.Signature())
	assert.Equal(t, 2, m.Arity())
}
