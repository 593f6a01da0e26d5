package model

import (
	"sort"
	"weak"

	"github.com/panbanda/oometrics/pkg/metric"
	"github.com/panbanda/oometrics/pkg/syntax"
)

// Build creates the construct tree for a parsed project in two phases:
// collect every declaration, then resolve inheritance and dependencies into
// the project's Index.
func Build(src *syntax.Project) *Project {
	proj := &Project{name: src.Name, store: metric.NewStore()}
	if proj.name == "" {
		proj.name = "project"
	}
	self := weak.Make(proj)

	byName := make(map[string]*Package)
	var classes []*Class
	for _, f := range src.Files {
		if f == nil {
			continue
		}
		name := f.Package
		if name == "" {
			name = DefaultPackage
		}
		pkg, ok := byName[name]
		if !ok {
			pkg = &Package{name: name, store: metric.NewStore(), parent: self}
			byName[name] = pkg
			proj.packages = append(proj.packages, pkg)
		}
		for _, decl := range f.Classes {
			classes = collect(pkg, f, decl, nil, classes)
		}
	}

	sort.SliceStable(proj.packages, func(i, j int) bool {
		return proj.packages[i].name < proj.packages[j].name
	})

	proj.index = newIndex(classes)
	proj.index.resolve()
	return proj
}

func collect(pkg *Package, f *syntax.File, decl *syntax.Class, outer *Class, acc []*Class) []*Class {
	name := decl.Name
	if outer != nil {
		name = outer.name + "." + decl.Name
	}
	qualified := name
	if f.Package != "" {
		qualified = f.Package + "." + name
	}

	c := &Class{
		id:        uint32(len(acc)),
		name:      name,
		qualified: qualified,
		decl:      decl,
		file:      f,
		store:     metric.NewStore(),
		parent:    weak.Make(pkg),
		outer:     outer,
		fields:    make(map[string]*syntax.Field, len(decl.Fields)),
	}
	for _, fd := range decl.Fields {
		c.fields[fd.Name] = fd
	}
	owner := weak.Make(c)
	for _, md := range decl.Methods {
		c.methods = append(c.methods, &Method{
			decl:   md,
			store:  metric.NewStore(),
			parent: owner,
			owner:  qualified,
			file:   f,
			fields: c.fields,
		})
	}

	pkg.classes = append(pkg.classes, c)
	acc = append(acc, c)
	for _, nested := range decl.Nested {
		acc = collect(pkg, f, nested, c, acc)
	}
	return acc
}
