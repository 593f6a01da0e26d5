package java

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/panbanda/oometrics/pkg/analyzer/method"
	"github.com/panbanda/oometrics/pkg/syntax"
)

const cartSource = `package com.acme.shop;

import java.util.List;
import java.util.*;
import static java.lang.Math.max;

public abstract class Cart extends Base implements Iterable<Item>, Serializable {
    private final List<Item> items = new ArrayList<>();
    protected int count, total[];
    static String NAME = "cart";

    public Cart(int count) {
        super();
        this.count = count;
    }

    public abstract double price();

    int sum(int[] xs, String... labels) {
        int s = 0;
        for (int i = 0; i < xs.length; i++) {
            if (xs[i] > 0 && xs[i] < 100) {
                s += xs[i];
            } else if (xs[i] == 0) {
                continue;
            } else {
                s--;
            }
        }
        for (Item it : items) {
            s += it.getCost();
        }
        while (s > 1000) {
            s /= 2;
        }
        switch (s) {
            case 1:
            case 2:
                s = 0;
                break;
            default:
                s = 1;
        }
        return s > 10 ? s : -s;
    }

    String describe(Object o) {
        try (var in = open()) {
            return switch (o.hashCode()) {
                case 1, 2 -> "low";
                default -> "high";
            };
        } catch (IOException | RuntimeException e) {
            log.warn(e);
        } finally {
            items.forEach(i -> i.reset());
        }
        Runnable r = new Runnable() {
            public void run() {
                if (true) {
                    count++;
                }
            }
        };
        items.stream().map(Item::name).count();
        return null;
    }

    public interface Visitor<T> {
        int LIMIT = 3;

        T visit(Item item);

        default void reset() {
        }
    }

    enum Color {
        RED, GREEN;

        int code() {
            return 1;
        }
    }
}
`

func parseCart(t *testing.T) *syntax.File {
	t.Helper()
	f, err := New().Parse(context.Background(), "Cart.java", []byte(cartSource))
	require.NoError(t, err)
	require.Len(t, f.Classes, 1)
	return f
}

func methodNamed(t *testing.T, c *syntax.Class, name string) *syntax.Method {
	t.Helper()
	for _, m := range c.Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found in %s", name, c.Name)
	return nil
}

func nestedNamed(t *testing.T, c *syntax.Class, name string) *syntax.Class {
	t.Helper()
	for _, n := range c.Nested {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("type %s not found in %s", name, c.Name)
	return nil
}

func collect(body *syntax.Node, kind syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	syntax.Inspect(body, func(n *syntax.Node) bool {
		if n.Kind == kind {
			out = append(out, n)
		}
		return true
	})
	return out
}

func TestParseFileHeader(t *testing.T) {
	f := parseCart(t)
	assert.Equal(t, "Cart.java", f.Path)
	assert.Equal(t, "com.acme.shop", f.Package)
	assert.Equal(t, []string{"java.util.List", "java.util.*"}, f.Imports, "static imports are dropped")
}

func TestParseClassDeclaration(t *testing.T) {
	c := parseCart(t).Classes[0]

	assert.Equal(t, "Cart", c.Name)
	assert.Equal(t, syntax.ClassRegular, c.Kind)
	assert.True(t, c.Modifiers.Has(syntax.Public|syntax.Abstract))
	assert.Equal(t, "Base", c.Super)
	assert.Equal(t, []string{"Iterable", "Serializable"}, c.Interfaces)
	assert.Equal(t, 7, c.StartLine)

	require.Len(t, c.Fields, 4)
	items := c.Fields[0]
	assert.Equal(t, "items", items.Name)
	assert.Equal(t, "List", items.Type.Name)
	require.Len(t, items.Type.Args, 1)
	assert.Equal(t, "Item", items.Type.Args[0].Name)
	assert.Equal(t, syntax.VisibilityPrivate, items.Modifiers.Visibility())
	assert.True(t, items.Modifiers.Has(syntax.Final))

	assert.Equal(t, "count", c.Fields[1].Name)
	assert.True(t, c.Fields[1].Type.IsPrimitive())
	assert.Equal(t, "total", c.Fields[2].Name)
	assert.Equal(t, 1, c.Fields[2].Type.Dims)
	assert.Equal(t, syntax.VisibilityProtected, c.Fields[2].Modifiers.Visibility())
	assert.True(t, c.Fields[3].Modifiers.Has(syntax.Static))
	assert.Equal(t, syntax.VisibilityPackage, c.Fields[3].Modifiers.Visibility())

	names := make([]string, len(c.Methods))
	for i, m := range c.Methods {
		names[i] = m.Name
	}
	assert.Equal(t, []string{"Cart", "price", "sum", "describe"}, names)
}

func TestParseMethods(t *testing.T) {
	c := parseCart(t).Classes[0]

	ctor := methodNamed(t, c, "Cart")
	assert.Equal(t, syntax.MethodConstructor, ctor.Kind)
	require.Len(t, ctor.Params, 1)
	assert.Equal(t, syntax.Param{Name: "count", Type: syntax.TypeRef{Name: "int"}}, ctor.Params[0])
	assert.Equal(t, 4, method.LinesOfCode(ctor.Source))
	calls := collect(ctor.Body, syntax.KindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "super", calls[0].Token)

	price := methodNamed(t, c, "price")
	assert.False(t, price.HasBody())
	assert.True(t, price.Modifiers.Has(syntax.Abstract))
	assert.Equal(t, "double", price.Result.Name)

	sum := methodNamed(t, c, "sum")
	require.Len(t, sum.Params, 2)
	assert.Equal(t, syntax.TypeRef{Name: "int", Dims: 1}, sum.Params[0].Type)
	assert.Equal(t, "labels", sum.Params[1].Name)
	assert.Equal(t, syntax.TypeRef{Name: "String", Dims: 1}, sum.Params[1].Type)
}

func TestLowerControlFlow(t *testing.T) {
	sum := methodNamed(t, parseCart(t).Classes[0], "sum")
	body := sum.Body

	// for, if, &&, else if, foreach, while, two case labels, ternary
	assert.Equal(t, 10, method.Cyclomatic(body))
	assert.Equal(t, 1, method.LoopNesting(body))
	assert.Equal(t, 2, method.ConditionNesting(body), "else if nests under its if")
	assert.Len(t, collect(body, syntax.KindFor), 1)
	assert.Len(t, collect(body, syntax.KindForEach), 1)
	assert.Len(t, collect(body, syntax.KindWhile), 1)
	assert.Len(t, collect(body, syntax.KindContinue), 1)

	each := collect(body, syntax.KindForEach)[0]
	assert.Equal(t, "it", each.Token)
	assert.Equal(t, "items", each.Cond.Token)

	loop := collect(body, syntax.KindFor)[0]
	require.NotNil(t, loop.Cond)
	assert.Equal(t, "<", loop.Cond.Op())
	require.Len(t, loop.Children, 3)
	assert.Equal(t, syntax.KindVar, loop.Children[0].Kind)
	assert.Equal(t, syntax.KindPostfix, loop.Children[1].Kind)

	sw := collect(body, syntax.KindSwitch)[0]
	assert.Len(t, sw.Arms(), 2, "default adds no arm")
	assert.Equal(t, "s", sw.Cond.Token)

	ifs := collect(body, syntax.KindIf)
	require.Len(t, ifs, 2)
	require.NotNil(t, ifs[0].Else())
	assert.Equal(t, syntax.KindIf, ifs[0].Else().Kind)
	assert.Equal(t, "&&", ifs[0].Cond.Op())

	vars := collect(body, syntax.KindVar)
	require.Len(t, vars, 2)
	assert.Equal(t, "s", vars[0].Token)
	assert.Equal(t, "int", vars[0].Label)

	calls := collect(body, syntax.KindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "getCost", calls[0].Callee())
	assert.Equal(t, "it", calls[0].Receiver().Token)
}

func TestLowerExpressions(t *testing.T) {
	describe := methodNamed(t, parseCart(t).Classes[0], "describe")
	body := describe.Body

	// two case values and one catch
	assert.Equal(t, 4, method.Cyclomatic(body))
	assert.Empty(t, collect(body, syntax.KindIf), "anonymous class bodies are not lowered")

	news := collect(body, syntax.KindNew)
	require.Len(t, news, 1)
	assert.Equal(t, "Runnable", news[0].Token)

	try := collect(body, syntax.KindTry)[0]
	require.Len(t, try.Catches(), 1)
	assert.Equal(t, "IOException", try.Catches()[0].Label)
	assert.Equal(t, "e", try.Catches()[0].Token)
	resource := try.Children[0].Children[0]
	assert.Equal(t, syntax.KindVar, resource.Kind)
	assert.Equal(t, "in", resource.Token)
	assert.Empty(t, resource.Label, "inferred locals carry no type")
	assert.Equal(t, syntax.KindFinally, try.Children[len(try.Children)-1].Kind)

	refs := collect(body, syntax.KindMethodRef)
	require.Len(t, refs, 1)
	assert.Equal(t, "name", refs[0].Callee())
	assert.Equal(t, "Item", refs[0].Receiver().Token)
	assert.Len(t, collect(body, syntax.KindLambda), 1)

	iterating := map[string]bool{"forEach": true, "map": true}
	assert.Equal(t, 2, method.Loops(body, iterating))

	callees := map[string]bool{}
	for _, c := range collect(body, syntax.KindCall) {
		callees[c.Callee()] = true
	}
	for _, want := range []string{"open", "hashCode", "warn", "forEach", "reset", "stream", "map", "count"} {
		assert.True(t, callees[want], want)
	}
	assert.False(t, callees["run"])
}

func TestParseNestedTypes(t *testing.T) {
	c := parseCart(t).Classes[0]
	require.Len(t, c.Nested, 2)

	visitor := nestedNamed(t, c, "Visitor")
	assert.Equal(t, syntax.ClassInterface, visitor.Kind)
	assert.Equal(t, []string{"T"}, visitor.TypeParams)
	require.Len(t, visitor.Fields, 1)
	assert.True(t, visitor.Fields[0].Modifiers.Has(syntax.Public|syntax.Static|syntax.Final))

	visit := methodNamed(t, visitor, "visit")
	assert.True(t, visit.Modifiers.Has(syntax.Public|syntax.Abstract))
	assert.Equal(t, "T", visit.Result.Name)
	reset := methodNamed(t, visitor, "reset")
	assert.True(t, reset.Modifiers.Has(syntax.Default))
	assert.False(t, reset.Modifiers.Has(syntax.Abstract))
	assert.True(t, reset.HasBody())

	color := nestedNamed(t, c, "Color")
	assert.Equal(t, syntax.ClassEnum, color.Kind)
	require.Len(t, color.Fields, 2)
	assert.Equal(t, "RED", color.Fields[0].Name)
	assert.Equal(t, "Color", color.Fields[0].Type.Name)
	require.Len(t, color.Methods, 1)
	assert.Equal(t, "code", color.Methods[0].Name)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := New().Parse(context.Background(), "Broken.java", []byte("class Broken { void f( { }"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), "Broken.java:1")
}

func TestParseCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Parse(ctx, "Cart.java", []byte(cartSource))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseMemoized(t *testing.T) {
	p := New()
	first, err := p.Parse(context.Background(), "Cart.java", []byte(cartSource))
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), "Cart.java", []byte(cartSource))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, int64(1), p.CacheStats().Hits)

	changed, err := p.Parse(context.Background(), "Cart.java", []byte("class Cart {}"))
	require.NoError(t, err)
	assert.NotSame(t, first, changed)

	uncached := New(WithCache(nil))
	a, err := uncached.Parse(context.Background(), "Cart.java", []byte(cartSource))
	require.NoError(t, err)
	b, err := uncached.Parse(context.Background(), "Cart.java", []byte(cartSource))
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Zero(t, uncached.CacheStats().Entries)
}

func TestParseFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	paths := []string{
		write("A.java", "package p;\nclass A {}\n"),
		write("Broken.java", "class Broken {"),
		write("B.java", "package p;\nclass B extends A {}\n"),
		filepath.Join(dir, "Missing.java"),
	}

	var ticks atomic.Int32
	p := New(WithLogger(zaptest.NewLogger(t)), WithWorkers(2))
	files, errs := p.ParseFiles(context.Background(), paths, func() { ticks.Add(1) })

	require.Len(t, files, 2)
	assert.Equal(t, "A", files[0].Classes[0].Name)
	assert.Equal(t, "A", files[1].Classes[0].Super)
	require.NotNil(t, errs)
	assert.Equal(t, 2, errs.Len())
	assert.ErrorIs(t, errs, ErrSyntax)
	assert.Equal(t, int32(len(paths)), ticks.Load())

	again, err := p.ParseFile(context.Background(), paths[0])
	require.NoError(t, err)
	assert.Same(t, files[0], again)
}
