package metadata

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/conduit-lang/tref/internal/compiler/cache"
	"github.com/conduit-lang/tref/internal/compiler/directive"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	tref "github.com/conduit-lang/tref/runtime/metadata"
)

// DefaultOutput is the name of the generated file.
const DefaultOutput = "tref_gen.go"

// Options control which files are scanned.
type Options struct {
	// Output is the generated file name; it is never scanned.
	Output string
	// IncludeTests also scans _test.go files of the package itself.
	IncludeTests bool
}

// Extractor builds Package models from source directories.
type Extractor struct {
	opts   Options
	logger *zap.Logger
	hasher *cache.FileHasher
}

// NewExtractor creates a new extractor. A nil logger disables logging.
func NewExtractor(logger *zap.Logger, opts Options) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Output == "" {
		opts.Output = DefaultOutput
	}
	return &Extractor{
		opts:   opts,
		logger: logger,
		hasher: cache.NewFileHasher(),
	}
}

// SourceFiles lists the files of dir that would be scanned, sorted by name.
func (e *Extractor) SourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case entry.IsDir(),
			!strings.HasSuffix(name, ".go"),
			strings.HasPrefix(name, "."), strings.HasPrefix(name, "_"),
			name == e.opts.Output,
			strings.HasSuffix(name, "_test.go") && !e.opts.IncludeTests:
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ExtractDir extracts the model of the package in dir.
//
// Diagnostics do not stop extraction: the returned package holds everything
// that could be resolved, and the error is a cerrors.ErrorList describing the
// rest. I/O and Go syntax errors are returned as plain errors with a nil
// package.
func (e *Extractor) ExtractDir(dir string) (*Package, error) {
	paths, err := e.SourceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}

	x := newExtraction(dir)
	for _, path := range paths {
		if err := x.parseFile(path); err != nil {
			return nil, err
		}
	}
	if len(x.files) == 0 {
		return nil, fmt.Errorf("no package sources in %s", dir)
	}

	hash, err := e.hasher.HashFiles(paths)
	if err != nil {
		return nil, err
	}
	x.pkg.SourceHash = hash
	x.pkg.ImportPath = resolveImportPath(dir)

	x.run()

	e.logger.Debug("extracted package",
		zap.String("dir", dir),
		zap.String("package", x.pkg.Name),
		zap.Int("types", len(x.pkg.Types)),
		zap.Int("enums", len(x.pkg.Enums)),
		zap.Int("diagnostics", len(x.errs)))

	if x.errs.HasErrors() {
		return x.pkg, x.errs
	}
	return x.pkg, nil
}

type sourceFile struct {
	name    string
	ast     *ast.File
	imports map[string]string // local name -> path
}

type structInfo struct {
	spec *ast.TypeSpec
	st   *ast.StructType
	file *sourceFile
}

type methodInfo struct {
	decl    *ast.FuncDecl
	pointer bool
	file    *sourceFile
}

// pending ties directives to the declaration they were found on.
type pending struct {
	dirs []*directive.Directive
	file *sourceFile
	spec ast.Spec
	decl ast.Decl
}

// placedFact is a fact waiting to be ordered and indexed.
type placedFact struct {
	owner *TypeDecl
	fact  *FactDecl
	pos   token.Pos
	file  *sourceFile
}

type factKey struct {
	owner    *TypeDecl
	category string
}

type extraction struct {
	fset  *token.FileSet
	dir   string
	pkg   *Package
	files []*sourceFile
	errs  cerrors.ErrorList

	structs map[string]*structInfo
	named   map[string]*ast.TypeSpec
	methods map[string]map[string]*methodInfo

	typeDirs   []pending
	methodDirs []pending
	varDirs    []pending
	constDecls []pending

	types     map[string]*TypeDecl
	typeFiles map[*TypeDecl]*sourceFile
	explicit  map[*TypeDecl]string
	enums     map[string]*EnumDecl
	facts     []placedFact
	arena     map[factKey]*tref.Accumulator[*FactDecl]
	imports   map[string]Import
	consumed  map[token.Pos]bool
}

func newExtraction(dir string) *extraction {
	return &extraction{
		fset:      token.NewFileSet(),
		dir:       dir,
		pkg:       &Package{Dir: dir},
		structs:   make(map[string]*structInfo),
		named:     make(map[string]*ast.TypeSpec),
		methods:   make(map[string]map[string]*methodInfo),
		types:     make(map[string]*TypeDecl),
		typeFiles: make(map[*TypeDecl]*sourceFile),
		explicit:  make(map[*TypeDecl]string),
		enums:     make(map[string]*EnumDecl),
		arena:     make(map[factKey]*tref.Accumulator[*FactDecl]),
		imports:   make(map[string]Import),
		consumed:  make(map[token.Pos]bool),
	}
}

func (x *extraction) parseFile(path string) error {
	f, err := parser.ParseFile(x.fset, path, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	name := f.Name.Name
	if strings.HasSuffix(name, "_test") {
		// external test package
		return nil
	}
	if x.pkg.Name == "" {
		x.pkg.Name = name
	} else if x.pkg.Name != name {
		return fmt.Errorf("%s: package %s, expected %s", path, name, x.pkg.Name)
	}

	sf := &sourceFile{
		name:    filepath.Base(path),
		ast:     f,
		imports: fileImports(f),
	}
	x.files = append(x.files, sf)
	x.pkg.Files = append(x.pkg.Files, sf.name)
	return nil
}

func (x *extraction) run() {
	for _, f := range x.files {
		x.collect(f)
	}

	x.processTypeDirectives()
	x.resolveBases()
	x.processStructFields()
	x.processMethods()
	x.processStatics()
	x.processEnums()
	x.indexFacts()
	x.orderTypes()
	x.collectImports()
	x.reportStrayDirectives()
	x.assignIDs()
}

// collect records declarations and the directives attached to them.
func (x *extraction) collect(f *sourceFile) {
	for _, decl := range f.ast.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			x.collectGenDecl(f, d)
		case *ast.FuncDecl:
			dirs := x.scan(d.Doc)
			if d.Recv == nil || len(d.Recv.List) == 0 {
				x.misplaced(dirs, "a function")
				continue
			}
			recv, pointer := receiverType(d.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			if x.methods[recv] == nil {
				x.methods[recv] = make(map[string]*methodInfo)
			}
			x.methods[recv][d.Name.Name] = &methodInfo{decl: d, pointer: pointer, file: f}
			if len(dirs) > 0 {
				x.methodDirs = append(x.methodDirs, pending{dirs: dirs, file: f, decl: d})
			}
		}
	}
}

func (x *extraction) collectGenDecl(f *sourceFile, d *ast.GenDecl) {
	grouped := d.Lparen.IsValid()

	for _, spec := range d.Specs {
		var groups []*ast.CommentGroup
		if !grouped {
			groups = append(groups, d.Doc)
		}

		switch s := spec.(type) {
		case *ast.TypeSpec:
			groups = append(groups, s.Doc, s.Comment)
			x.named[s.Name.Name] = s
			if st, ok := s.Type.(*ast.StructType); ok {
				x.structs[s.Name.Name] = &structInfo{spec: s, st: st, file: f}
			}
			if dirs := x.scan(groups...); len(dirs) > 0 {
				x.typeDirs = append(x.typeDirs, pending{dirs: dirs, file: f, spec: s, decl: d})
			}
		case *ast.ValueSpec:
			groups = append(groups, s.Doc, s.Comment)
			if d.Tok == token.CONST {
				// enum items are resolved once all enum types are known
				x.constDecls = append(x.constDecls, pending{file: f, spec: s, decl: d})
				continue
			}
			if dirs := x.scan(groups...); len(dirs) > 0 {
				x.varDirs = append(x.varDirs, pending{dirs: dirs, file: f, spec: s, decl: d})
			}
		}
	}
}

// scan parses the directives in groups and reports syntax errors.
func (x *extraction) scan(groups ...*ast.CommentGroup) []*directive.Directive {
	var live []*ast.CommentGroup
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			if directive.IsDirective(c.Text) {
				x.consumed[c.Slash] = true
			}
		}
		live = append(live, g)
	}

	dirs, errs := directive.Scan(live...)
	for _, err := range errs {
		pos := x.fset.Position(err.Pos)
		if err.UnknownVerb {
			verb := strings.Fields(strings.TrimPrefix(err.Raw, directive.Prefix))[0]
			x.errs = append(x.errs, cerrors.NewUnknownVerb(pos, err.Raw, verb))
			continue
		}
		x.errs = append(x.errs, cerrors.NewMalformedDirective(pos, err.Raw, err.Msg))
	}
	return dirs
}

func (x *extraction) misplaced(dirs []*directive.Directive, where string) {
	for _, d := range dirs {
		x.errs = append(x.errs, cerrors.NewMisplacedDirective(x.fset.Position(d.Pos), d.Verb, where))
	}
}

// reportStrayDirectives flags directives that are not attached to any
// declaration, e.g. inside function bodies or separated by a blank line.
func (x *extraction) reportStrayDirectives() {
	for _, f := range x.files {
		for _, g := range f.ast.Comments {
			for _, c := range g.List {
				if directive.IsDirective(c.Text) && !x.consumed[c.Slash] {
					verb := strings.TrimPrefix(c.Text, directive.Prefix)
					if fields := strings.Fields(verb); len(fields) > 0 {
						verb = fields[0]
					}
					x.errs = append(x.errs, cerrors.NewMisplacedDirective(
						x.fset.Position(c.Slash), verb, "a comment that is not attached to a declaration"))
				}
			}
		}
	}
}

func (x *extraction) position(pos token.Pos) Position {
	p := x.fset.Position(pos)
	return Position{File: filepath.Base(p.Filename), Line: p.Line}
}

func (x *extraction) errPos(pos token.Pos) token.Position {
	return x.fset.Position(pos)
}

// validMeta reports a TRF102 error when meta is not a Go expression.
func (x *extraction) validMeta(d *directive.Directive) (string, bool) {
	meta, ok := d.Param("meta")
	if !ok {
		return "", true
	}
	if _, err := parser.ParseExpr(meta); err != nil {
		x.errs = append(x.errs, cerrors.NewInvalidMetaExpr(x.errPos(d.Pos), meta, err))
		return "", false
	}
	return meta, true
}

// receiverType returns the receiver's base type name.
func receiverType(expr ast.Expr) (name string, pointer bool) {
	if star, ok := expr.(*ast.StarExpr); ok {
		pointer = true
		expr = star.X
	}
	switch e := expr.(type) {
	case *ast.IndexExpr:
		expr = e.X
	case *ast.IndexListExpr:
		expr = e.X
	}
	if id, ok := expr.(*ast.Ident); ok {
		return id.Name, pointer
	}
	return "", pointer
}
