package martin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/oometrics/internal/testutil"
	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/model"
	"github.com/panbanda/oometrics/pkg/syntax"
)

func fixture(t *testing.T) *model.Project {
	t.Helper()
	shape := testutil.Class("Shape", testutil.Field("String name"),
		testutil.Method("area", syntax.Block(syntax.Return(syntax.Lit("0")))))
	shape.Modifiers |= syntax.Abstract
	circle := testutil.Extends(testutil.Class("Circle", testutil.Field("double r"),
		testutil.Method("area", syntax.Block(syntax.Return(syntax.Ident("r"))))), "Shape", "Drawable")
	drawable := testutil.Interface("Drawable", testutil.Method("draw", nil))

	layer := testutil.Class("Layer", testutil.Field("int z"))
	layer.Modifiers |= syntax.Static
	canvas := testutil.Class("Canvas",
		testutil.Field("List<Shape> shapes"),
		testutil.Method("add", syntax.Block(
			syntax.Var("Circle", "c", syntax.New("Circle")),
			syntax.Call(syntax.Ident("Registry"), "register", syntax.Ident("c")),
		)),
		layer,
	)

	return model.Build(testutil.Project(
		testutil.File("geo", shape, circle, drawable),
		testutil.File("ui", canvas, testutil.Class("Registry")),
	))
}

func pkg(proj *model.Project, name string) *model.Package {
	for _, p := range proj.Packages() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

func TestCalculate(t *testing.T) {
	proj := fixture(t)
	geo, ui := pkg(proj, "geo"), pkg(proj, "ui")
	require.NoError(t, Calculate(geo, proj.Index()))
	require.NoError(t, Calculate(ui, proj.Index()))

	g := geo.Metrics()
	assert.Equal(t, int64(0), g.Value(metric.Ce).Int64())
	assert.Equal(t, int64(1), g.Value(metric.Ca).Int64())
	assert.InDelta(t, 0.0, g.Value(metric.I).Float(), 1e-9)
	assert.InDelta(t, 2.0/3.0, g.Value(metric.A).Float(), 1e-9)
	assert.InDelta(t, 1.0/3.0, g.Value(metric.D).Float(), 1e-9)
	assert.Equal(t, int64(1), g.Value(metric.PNOCC).Int64())
	assert.Equal(t, int64(1), g.Value(metric.PNOAC).Int64())
	assert.Equal(t, int64(1), g.Value(metric.PNOI).Int64())
	assert.Equal(t, int64(0), g.Value(metric.PNOSC).Int64())
	assert.Equal(t, int64(2), g.Value(metric.PLOC).Int64())
	assert.Equal(t, int64(10), g.Value(metric.PNCSS).Int64())

	u := ui.Metrics()
	assert.Equal(t, int64(2), u.Value(metric.Ce).Int64())
	assert.Equal(t, int64(0), u.Value(metric.Ca).Int64())
	assert.InDelta(t, 1.0, u.Value(metric.I).Float(), 1e-9)
	assert.InDelta(t, 0.0, u.Value(metric.A).Float(), 1e-9)
	assert.InDelta(t, 0.0, u.Value(metric.D).Float(), 1e-9)
	assert.Equal(t, int64(3), u.Value(metric.PNOCC).Int64())
	assert.Equal(t, int64(1), u.Value(metric.PNOSC).Int64())
	assert.Equal(t, len(Types), u.Len())

	assert.ErrorIs(t, Calculate(ui, proj.Index()), metric.ErrAlreadyRecorded)
}

func TestRecordedValuesWin(t *testing.T) {
	proj := fixture(t)
	geo := pkg(proj, "geo")
	for _, c := range geo.Classes() {
		for _, m := range c.Methods() {
			require.NoError(t, m.Metrics().Record(metric.LOC, metric.Count(5)))
		}
	}
	require.NoError(t, Calculate(geo, proj.Index()))
	assert.Equal(t, int64(15), geo.Metrics().Value(metric.PLOC).Int64())
}

func TestInstability(t *testing.T) {
	assert.Zero(t, Instability(0, 0))
	assert.InDelta(t, 0.25, Instability(1, 3), 1e-9)
	assert.InDelta(t, 1.0, Instability(4, 0), 1e-9)
}

func TestDistance(t *testing.T) {
	assert.InDelta(t, 0.0, Distance(1, 0), 1e-9)
	assert.InDelta(t, 0.0, Distance(0, 1), 1e-9)
	assert.InDelta(t, 1.0, Distance(0, 0), 1e-9)
	assert.InDelta(t, 1.0, Distance(1, 1), 1e-9)
}

func TestAbstractnessEmpty(t *testing.T) {
	proj := model.Build(testutil.Project())
	assert.Empty(t, proj.Packages())
	assert.Zero(t, Abstractness(&model.Package{}))
}
