// Package lint orchestrates one validation pass over a template directory:
// parse the manifest, fan the rule groups out over a per-run document cache,
// and collect diagnostics by document. Every Run starts from scratch; there
// is no incremental state between runs.
package lint

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"templint/internal/diag"
	"templint/internal/jsontree"
	"templint/internal/observ"
	"templint/internal/rules"
	"templint/internal/source"
	"templint/internal/template"
)

// ManifestName is the fixed file name of the template manifest.
const ManifestName = "template-info.json"

// DefaultMaxDiagnostics bounds a run that hits a pathological input.
const DefaultMaxDiagnostics = 1000

// ProgressFunc receives group completion events during a run.
type ProgressFunc func(group string, completed, total int)

// Linter is the reusable entry point. Zero value works; fields tune one
// concern each.
type Linter struct {
	// Host supplies documents and stats. Nil means the OS filesystem.
	Host Host
	// ManifestHook runs on the raw parsed manifest tree before any rule,
	// so a collaborator can extract metadata even when linting fails.
	ManifestHook func(*jsontree.Tree)
	// Jobs caps rule-group parallelism. Zero means GOMAXPROCS.
	Jobs int
	// MaxDiagnostics caps the bag. Zero means DefaultMaxDiagnostics.
	MaxDiagnostics int
	// MaxCSVSize overrides the CSV size limit when positive.
	MaxCSVSize int64
	// Progress, when set, is called after each rule group finishes.
	Progress ProgressFunc
}

// New returns a Linter backed by the OS filesystem.
func New() *Linter {
	return &Linter{Host: OSHost{}}
}

// Result is the terminal state of one run.
type Result struct {
	Files       *source.FileSet
	Dir         *template.Dir
	Manifest    *rules.Doc
	Diagnostics *diag.Bag
	Timing      observ.Report
}

// ByDocument groups the diagnostics by owning document path. The caller
// reconciles this against a previous run's map; stale documents simply stop
// appearing.
func (r *Result) ByDocument() map[string][]diag.Diagnostic {
	out := make(map[string][]diag.Diagnostic)
	for _, d := range r.Diagnostics.Items() {
		path := r.Files.Get(d.Primary.File).Path
		out[path] = append(out[path], d)
	}
	return out
}

// lockedReporter serializes rule groups writing into one bag.
type lockedReporter struct {
	mu  sync.Mutex
	bag *diag.Bag
}

func (r *lockedReporter) Report(d diag.Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bag.Add(d)
}

type ruleGroup struct {
	name string
	run  func(*rules.Context)
}

// GroupNames returns the rule group names in registration order, for
// progress displays.
func GroupNames() []string {
	names := make([]string, len(ruleGroups))
	for i, grp := range ruleGroups {
		names[i] = grp.name
	}
	return names
}

var ruleGroups = []ruleGroup{
	{"manifest", rules.Manifest},
	{"variables", rules.Variables},
	{"ui", rules.UI},
	{"rules", rules.RulesFiles},
	{"folder", rules.Folder},
	{"auto-install", rules.AutoInstall},
	{"layout", rules.Layout},
}

// Run lints the template at target, which may name the template directory or
// the manifest file itself. An unreadable manifest is an error; a manifest
// that does not parse at all short-circuits to an empty result.
func (l *Linter) Run(ctx context.Context, target string) (*Result, error) {
	host := l.Host
	if host == nil {
		host = OSHost{}
	}
	maxDiags := l.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = DefaultMaxDiagnostics
	}

	root, manifestPath, err := resolveTarget(ctx, host, target)
	if err != nil {
		return nil, err
	}

	timer := observ.NewTimer()
	files := source.NewFileSetWithBase(root)
	res := &Result{Files: files, Diagnostics: diag.NewBag(maxDiags)}

	phase := timer.Begin("parse manifest")
	content, err := host.OpenDocument(ctx, manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	file := files.Get(files.AddBytes(manifestPath, content))
	// Partial trees still lint; only a manifest with no root at all
	// short-circuits the run.
	tree, _ := jsontree.Parse(file)
	timer.End(phase, file.Path)

	if tree == nil || tree.Root == jsontree.NoNode {
		res.Dir = template.NewDir(root, manifestPath, nil)
		res.Timing = timer.Report()
		return res, nil
	}
	if l.ManifestHook != nil {
		l.ManifestHook(tree)
	}

	res.Dir = template.NewDir(root, manifestPath, tree)
	res.Manifest = &rules.Doc{File: file, Tree: tree}

	reporter := &lockedReporter{bag: res.Diagnostics}
	cache := newDocCache(host, root, files)

	jobs := l.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	phase = timer.Begin("run rules")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(ruleGroups)))

	var completed atomic.Int32
	for _, grp := range ruleGroups {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			rctx := &rules.Context{
				Ctx:        gctx,
				Manifest:   res.Manifest,
				Dir:        res.Dir,
				Load:       cache,
				Report:     reporter,
				MaxCSVSize: l.MaxCSVSize,
			}
			runGroup(grp, rctx, file.ID)

			if l.Progress != nil {
				l.Progress(grp.name, int(completed.Add(1)), len(ruleGroups))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}
	timer.End(phase, fmt.Sprintf("%d diagnostics", res.Diagnostics.Len()))

	res.Diagnostics.Sort()
	res.Timing = timer.Report()
	return res, nil
}

// runGroup isolates one rule group: a panic becomes an IORuleFault
// diagnostic instead of aborting the run.
func runGroup(grp ruleGroup, c *rules.Context, manifestID source.FileID) {
	defer func() {
		if rec := recover(); rec != nil {
			c.Report.Report(diag.New(diag.SevError, diag.IORuleFault,
				source.Span{File: manifestID},
				fmt.Sprintf("%s rules failed: %v", grp.name, rec)))
		}
	}()
	grp.run(c)
}

func resolveTarget(ctx context.Context, host Host, target string) (root, manifest string, err error) {
	fi, err := host.Stat(ctx, target)
	if err != nil {
		return "", "", err
	}
	if !fi.Exists {
		return "", "", fmt.Errorf("%s: no such file or directory", target)
	}
	if fi.IsDir {
		return target, filepath.Join(target, ManifestName), nil
	}
	return filepath.Dir(target), target, nil
}
