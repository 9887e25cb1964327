package commands

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/tref/internal/cli/ui"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	"github.com/conduit-lang/tref/internal/compiler/metadata"
)

// NewInspectCommand creates the inspect command
func NewInspectCommand(g *Globals) *cobra.Command {
	var (
		format   string
		typeName string
		tests    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect [package]",
		Short: "Show the reflection model extracted from a package",
		Long: `Extract the //tref: directives of one package and print the resulting
model without generating code.

Formats:
  table  types and enums with their fact counts (default)
  tree   class hierarchy with each type's facts
  json   full model, as consumed by editors
  yaml   full model

Examples:
  tref inspect ./shapes
  tref inspect ./shapes --format tree
  tref inspect ./shapes --type Child`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: packageDirCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := g.open(cmd)
			if err != nil {
				return err
			}
			defer s.close()

			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			ex := metadata.NewExtractor(s.logger, metadata.Options{
				Output:       s.cfg.Generate.Output,
				IncludeTests: tests || s.cfg.Generate.IncludeTests,
			})
			pkg, err := ex.ExtractDir(dir)
			var diags cerrors.ErrorList
			if err != nil && !errors.As(err, &diags) {
				return err
			}

			if typeName != "" {
				err = inspectType(s, pkg, dir, typeName, format)
			} else {
				err = inspectPackage(s, pkg, format)
			}
			if err != nil {
				return err
			}

			if len(diags) > 0 {
				fmt.Fprintln(s.errOut)
				ui.WriteDiagnostics(s.errOut, diags, s.noColor)
				return errReported
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, tree, json or yaml")
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Show a single type or enum")
	cmd.Flags().BoolVar(&tests, "tests", false, "Also scan _test.go files")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{"table", "tree", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

func inspectPackage(s *session, pkg *metadata.Package, format string) error {
	switch format {
	case "json":
		data, err := pkg.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, string(data))
	case "yaml":
		data, err := pkg.ToYAML()
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, string(data))
	case "tree":
		ui.RenderTree(s.out, packageTree(pkg), s.noColor)
	case "table":
		renderPackageTable(s, pkg)
	default:
		return fmt.Errorf("unknown format %q (want table, tree, json or yaml)", format)
	}
	return nil
}

func renderPackageTable(s *session, pkg *metadata.Package) {
	if pkg.Empty() {
		fmt.Fprint(s.out, ui.Info(fmt.Sprintf("package %s has no reflected types", pkg.Name), s.noColor))
		return
	}

	if len(pkg.Types) > 0 {
		t := ui.NewTable(s.out, s.noColor, "TYPE", "BASE", "KIND", "FIELDS", "METHODS", "STATICS", "MEMBER TYPES", "AT")
		for _, td := range pkg.Types {
			base := ""
			if td.Base != nil {
				base = td.Base.Expr
			}
			t.AddRow(
				typeLabel(td),
				base,
				typeKind(td),
				strconv.Itoa(len(td.FactsOf(metadata.FactField))),
				strconv.Itoa(len(td.FactsOf(metadata.FactMethod))),
				strconv.Itoa(len(td.FactsOf(metadata.FactStatic))),
				strconv.Itoa(len(td.FactsOf(metadata.FactMemberType))),
				td.Pos.String(),
			)
		}
		t.Render()
	}

	if len(pkg.Enums) > 0 {
		if len(pkg.Types) > 0 {
			fmt.Fprintln(s.out)
		}
		t := ui.NewTable(s.out, s.noColor, "ENUM", "UNDERLYING", "ITEMS", "AT")
		for _, e := range pkg.Enums {
			names := make([]string, len(e.Items))
			for i, it := range e.Items {
				names[i] = it.GoName
			}
			t.AddRow(enumLabel(e), e.Underlying, strings.Join(names, ", "), e.Pos.String())
		}
		t.Render()
	}
}

func inspectType(s *session, pkg *metadata.Package, dir, name, format string) error {
	var value any
	td := findType(pkg, name)
	if td != nil {
		value = td
	} else if e := findEnum(pkg, name); e != nil {
		value = e
	} else {
		fmt.Fprint(s.errOut, ui.TypeNotFoundError(name, dir, knownNames(pkg), s.noColor))
		return errReported
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		fmt.Fprint(s.out, string(data))
		return nil
	case "table", "tree":
	default:
		return fmt.Errorf("unknown format %q (want table, tree, json or yaml)", format)
	}

	if td == nil {
		renderEnum(s, value.(*metadata.EnumDecl))
		return nil
	}

	kv := ui.NewKeyValueTable(s.out, s.noColor)
	kv.AddRow("Type", typeLabel(td))
	kv.AddRow("ID", td.ID)
	kv.AddRow("Kind", typeKind(td))
	if td.Base != nil {
		kv.AddRow("Base", td.Base.Expr)
	}
	if len(td.Instances) > 0 {
		kv.AddRow("Instances", strings.Join(td.Instances, "; "))
	}
	for _, inst := range td.Instantiations {
		kv.AddRow("ID "+inst.Name, inst.ID)
	}
	if td.Registrar != "" {
		kv.AddRow("Registrar", td.Registrar)
	}
	if td.Meta != "" {
		kv.AddRow("Meta", td.Meta)
	}
	kv.AddRow("At", td.Pos.String())
	kv.Render()

	if len(td.Facts) == 0 {
		return nil
	}
	fmt.Fprintln(s.out)
	t := ui.NewTable(s.out, s.noColor, "#", "KIND", "NAME", "GO NAME", "TYPE", "META")
	for _, f := range td.Facts {
		typ := f.TypeExpr
		if f.Sig != "" {
			typ = f.Sig
		}
		t.AddRow(strconv.Itoa(f.Index), string(f.Kind), f.Name, f.GoName, typ, f.Meta)
	}
	t.Render()
	return nil
}

func renderEnum(s *session, e *metadata.EnumDecl) {
	kv := ui.NewKeyValueTable(s.out, s.noColor)
	kv.AddRow("Enum", enumLabel(e))
	kv.AddRow("ID", e.ID)
	kv.AddRow("Underlying", e.Underlying)
	if e.Meta != "" {
		kv.AddRow("Meta", e.Meta)
	}
	kv.AddRow("At", e.Pos.String())
	kv.Render()

	fmt.Fprintln(s.out)
	t := ui.NewTable(s.out, s.noColor, "#", "ITEM", "DECLARED", "META")
	for i, it := range e.Items {
		t.AddRow(strconv.Itoa(i), it.GoName, it.Raw, it.Meta)
	}
	t.Render()
}

// packageTree nests every type under its local base. Types whose base lives
// in another package, or that have none, are roots.
func packageTree(pkg *metadata.Package) []*ui.TreeNode {
	nodes := make(map[string]*ui.TreeNode, len(pkg.Types))
	var roots []*ui.TreeNode

	// Types are ordered bases first, so a base node always exists before
	// its subtypes are attached.
	for _, td := range pkg.Types {
		detail := fmt.Sprintf("[%s]", typeKind(td))
		if td.Base != nil && !td.Base.Local {
			detail += " base " + td.Base.Expr
		}
		node := &ui.TreeNode{Label: typeLabel(td), Detail: detail}
		for _, f := range td.Facts {
			node.Add(string(f.Kind)+" "+f.Name, factDetail(f))
		}
		nodes[td.Name] = node

		if td.Base != nil && td.Base.Local {
			if parent, ok := nodes[td.Base.Name]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	for _, e := range pkg.Enums {
		node := &ui.TreeNode{Label: enumLabel(e), Detail: "[enum " + e.Underlying + "]"}
		for _, it := range e.Items {
			node.Add(it.Raw, it.Meta)
		}
		roots = append(roots, node)
	}
	return roots
}

func factDetail(f *metadata.FactDecl) string {
	parts := make([]string, 0, 2)
	switch {
	case f.Sig != "":
		parts = append(parts, f.Sig)
	case f.TypeExpr != "":
		parts = append(parts, f.TypeExpr)
	}
	if f.Meta != "" {
		parts = append(parts, "meta="+f.Meta)
	}
	return strings.Join(parts, " ")
}

func typeLabel(td *metadata.TypeDecl) string {
	label := td.Name
	if td.Generic() {
		params := make([]string, len(td.TypeParams))
		for i, p := range td.TypeParams {
			params[i] = p.Name + " " + p.Constraint
		}
		label += "[" + strings.Join(params, ", ") + "]"
	}
	if td.DisplayName != "" && td.DisplayName != td.Name {
		label += fmt.Sprintf(" (%q)", td.DisplayName)
	}
	return label
}

func enumLabel(e *metadata.EnumDecl) string {
	if e.DisplayName != "" && e.DisplayName != e.Name {
		return fmt.Sprintf("%s (%q)", e.Name, e.DisplayName)
	}
	return e.Name
}

func typeKind(td *metadata.TypeDecl) string {
	var kinds []string
	switch {
	case td.Root:
		kinds = append(kinds, "root")
	case td.Subtype:
		kinds = append(kinds, "subtype")
	}
	if td.External {
		kinds = append(kinds, "external")
	}
	if len(kinds) == 0 {
		return "-"
	}
	return strings.Join(kinds, ",")
}

func findType(pkg *metadata.Package, name string) *metadata.TypeDecl {
	for _, td := range pkg.Types {
		if td.Name == name || td.RegisteredName() == name {
			return td
		}
	}
	return nil
}

func findEnum(pkg *metadata.Package, name string) *metadata.EnumDecl {
	for _, e := range pkg.Enums {
		if e.Name == name || e.DisplayName == name {
			return e
		}
	}
	return nil
}

func knownNames(pkg *metadata.Package) []string {
	var names []string
	for _, td := range pkg.Types {
		names = append(names, td.Name)
	}
	for _, e := range pkg.Enums {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	return names
}
