package install_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/transit/internal/dag"
	"github.com/aretw0/transit/internal/discovery"
	"github.com/aretw0/transit/internal/install"
	"github.com/aretw0/transit/internal/testutils"
	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/handler"
	"github.com/aretw0/transit/pkg/mapping"
	"github.com/aretw0/transit/pkg/operation"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type env struct {
	source    *testutils.Platform
	sourceReg *registry.Registry
	target    *testutils.Platform
	targetReg *registry.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	source := testutils.NewPlatform()
	testutils.SeedSite(t, source)
	target := testutils.NewPlatform()
	return &env{
		source:    source,
		sourceReg: testutils.NewRegistry(t, source),
		target:    target,
		targetReg: testutils.NewRegistry(t, target),
	}
}

func (e *env) walk(t *testing.T, root domain.Dependency) *discovery.Closure {
	t.Helper()
	c, err := discovery.New(e.sourceReg).Walk(context.Background(), root)
	require.NoError(t, err)
	return c
}

func (e *env) export(t *testing.T, c *discovery.Closure) *memory.Archive {
	t.Helper()
	archive := memory.NewArchive(nil)
	for _, d := range c.Dependencies() {
		if d.Kind == domain.KindServer {
			continue
		}
		h, err := e.sourceReg.Resolve(d.Type)
		require.NoError(t, err)
		if exp, ok := h.(ports.Exporter); ok {
			require.NoError(t, exp.ExportDependencyFiles(context.Background(), archive, d))
		}
	}
	return archive
}

func (e *env) importContext(t *testing.T) *operation.Context {
	t.Helper()
	ictx, err := operation.New(mapping.LocatorTypes{Locator: e.targetReg}, operation.WithServers("staging", "prod"))
	require.NoError(t, err)
	return ictx
}

// without copies archive minus the entry of dep.
func without(t *testing.T, archive *memory.Archive, dep domain.Dependency) *memory.Archive {
	t.Helper()
	ctx := context.Background()
	out := memory.NewArchive(nil)
	names, err := archive.List(ctx)
	require.NoError(t, err)
	for _, n := range names {
		if n == handler.EntryName(dep) {
			continue
		}
		data, err := archive.Open(ctx, n)
		require.NoError(t, err)
		require.NoError(t, out.Put(ctx, n, data))
	}
	return out
}

type logLine struct {
	Type   string
	Action domain.Action
}

func lines(entries []domain.LogEntry) []logLine {
	out := make([]logLine, len(entries))
	for i, e := range entries {
		out[i] = logLine{e.ElementType, e.Action}
	}
	return out
}

func TestInstall_FolderScenario(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Folder", "/Site", domain.KindShared))

	report, err := install.New(e.targetReg).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	assert.Equal(t, []logLine{
		{"FolderDef", domain.ActionCreated},
		{"FolderContents", domain.ActionCreated},
	}, lines(report.Log))
	assert.Equal(t, "Site", report.Log[0].ElementName)
	assert.True(t, report.Complete())
}

func TestInstall_PageClosure(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Page", "5", domain.KindShared))

	report, err := install.New(e.targetReg).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	assert.Equal(t, []logLine{
		{"Template", domain.ActionCreated},
		{"ComponentDef", domain.ActionCreated},
		{"Page", domain.ActionCreated},
		{"ComponentInstance", domain.ActionCreated},
		{"Portlet", domain.ActionCreated},
	}, lines(report.Log))

	assert.Equal(t, []string{"1000"}, e.target.Records.Keys("templates"))
	assert.Equal(t, []string{"1000:sidebar"}, e.target.Records.Keys("component_instances"))
	assert.Equal(t, []string{"5:news"}, e.target.Records.Keys("portlets"))
	assert.Equal(t, "1000", e.target.Record(t, "Page", "5")["template_id"])
	assert.Empty(t, e.target.Records.Keys("roles"), "server objects are never installed")

	assert.Equal(t, domain.OutcomeSkipped, report.Outcome(domain.Key{Type: "Role", ID: "editor", ParentType: "Page", ParentID: "5"}))
}

func TestInstall_NoOverwrite(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	e.source.Put(t, ports.CatalogEntry{Type: "Theme", ID: "dark", Name: "Dark"}, ports.Record{"id": "dark", "accent": "purple"})
	e.target.Put(t, ports.CatalogEntry{Type: "Theme", ID: "dark", Name: "Dark"}, ports.Record{"id": "dark", "accent": "green"})

	c := e.walk(t, testutils.Dep("Theme", "dark", domain.KindShared))
	report, err := install.New(e.targetReg).Install(ctx, e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	require.Len(t, report.Log, 1)
	assert.Equal(t, domain.ActionSkippedNoOverwrite, report.Log[0].Action)
	assert.Equal(t, "green", e.target.Record(t, "Theme", "dark")["accent"])
	assert.Equal(t, domain.OutcomeSkipped, report.Outcome(domain.Key{Type: "Theme", ID: "dark"}))
}

func TestInstall_ExistingIsModified(t *testing.T) {
	e := newEnv(t)
	e.target.Put(t, ports.CatalogEntry{Type: "FolderDef", ID: "/Site"}, ports.Record{"id": "/Site", "path": "/Old"})

	c := e.walk(t, testutils.Dep("Folder", "/Site", domain.KindShared))
	report, err := install.New(e.targetReg).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	assert.Equal(t, []logLine{
		{"FolderDef", domain.ActionModified},
		{"FolderContents", domain.ActionCreated},
	}, lines(report.Log))
	assert.Equal(t, "/Site", e.target.Record(t, "FolderDef", "/Site")["path"])
}

func TestInstall_ReplaceLogsDeleteAndCreate(t *testing.T) {
	e := newEnv(t)
	e.source.Put(t, ports.CatalogEntry{Type: "Snippet", ID: "footer"}, ports.Record{"id": "footer", "html": "<p>new</p>"})
	e.target.Put(t, ports.CatalogEntry{Type: "Snippet", ID: "footer"}, ports.Record{"id": "footer", "html": "<p>old</p>", "stale": true})

	c := e.walk(t, testutils.Dep("Snippet", "footer", domain.KindShared))
	report, err := install.New(e.targetReg).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	assert.Equal(t, []logLine{
		{"Snippet", domain.ActionDeleted},
		{"Snippet", domain.ActionCreated},
	}, lines(report.Log))

	rec := e.target.Record(t, "Snippet", "footer")
	assert.Equal(t, "<p>new</p>", rec["html"])
	assert.NotContains(t, rec, "stale")
}

func TestInstall_MissingFileIsRecoverable(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Page", "5", domain.KindShared))

	// Drop the page record: the page and the portlet that travels with it fail,
	// the shared elements it references are still installed.
	trimmed := without(t, e.export(t, c), testutils.Dep("Page", "5", ""))

	report, err := install.New(e.targetReg).Install(context.Background(), trimmed, c, e.importContext(t))
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	var missing *domain.MissingDependencyFileError
	require.True(t, errors.As(report.Errors[0], &missing))
	assert.Equal(t, "Page", missing.ObjectType)
	assert.Equal(t, "5", missing.ObjectID)

	assert.Equal(t, domain.OutcomeFailed, report.Outcome(domain.Key{Type: "Page", ID: "5"}))
	assert.Equal(t, domain.OutcomeNotAttempted, report.Outcome(domain.Key{Type: "Portlet", ID: "5:news", ParentType: "Page", ParentID: "5"}))
	assert.Equal(t, domain.OutcomeApplied, report.Outcome(domain.Key{Type: "ComponentInstance", ID: "12:sidebar", ParentType: "ComponentDef", ParentID: "12"}))
	assert.False(t, report.Complete())

	assert.Equal(t, []logLine{
		{"Template", domain.ActionCreated},
		{"ComponentDef", domain.ActionCreated},
		{"ComponentInstance", domain.ActionCreated},
	}, lines(report.Log))
}

func TestInstall_FatalErrorKeepsLog(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Page", "5", domain.KindShared))
	archive := e.export(t, c)
	require.NoError(t, archive.Put(context.Background(),
		handler.EntryName(testutils.Dep("ComponentDef", "12", "")), []byte("{broken")))

	var failures []domain.InstallEvent
	hooks := domain.Hooks{OnInstallError: func(_ context.Context, ev *domain.InstallEvent) {
		failures = append(failures, *ev)
	}}

	report, err := install.New(e.targetReg, install.WithHooks(hooks)).Install(context.Background(), archive, c, e.importContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWrongFormat)

	var ue *domain.UnexpectedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, "ComponentDef", ue.ObjectType)
	assert.Equal(t, "Navigation", ue.DisplayName)

	require.NotNil(t, report)
	assert.Equal(t, []logLine{{"Template", domain.ActionCreated}}, lines(report.Log))
	assert.Equal(t, domain.OutcomeFailed, report.Outcome(domain.Key{Type: "ComponentDef", ID: "12"}))
	assert.Equal(t, domain.OutcomeNotAttempted, report.Outcome(domain.Key{Type: "Page", ID: "5"}))
	require.Len(t, failures, 1)
	assert.Equal(t, "ComponentDef", failures[0].Dependency.Type)
}

func TestInstall_StateTransitions(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Folder", "/Site", domain.KindShared))

	var states []domain.InstallState
	hooks := domain.Hooks{OnInstallState: func(_ context.Context, ev *domain.InstallEvent) {
		if ev.Dependency.Type == "FolderDef" {
			states = append(states, ev.State)
		}
	}}

	_, err := install.New(e.targetReg, install.WithHooks(hooks)).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)
	assert.Equal(t, []domain.InstallState{domain.StateNotInstalled, domain.StateCreating, domain.StateLogged}, states)
}

func TestPlan_Cycle(t *testing.T) {
	e := newEnv(t)
	template := testutils.Dep("Template", "3", domain.KindShared)
	component := testutils.Dep("ComponentDef", "12", domain.KindShared)
	c := &discovery.Closure{
		Root:  template,
		Nodes: []discovery.Node{{Dependency: template, Required: true}, {Dependency: component, Required: true}},
		Edges: []discovery.Edge{
			{From: template.Key(), To: component.Key()},
			{From: component.Key(), To: template.Key()},
		},
	}

	report, err := install.New(e.targetReg).Install(context.Background(), memory.NewArchive(nil), c, e.importContext(t))
	var cycle *dag.CycleError[domain.Key]
	require.True(t, errors.As(err, &cycle))
	assert.Len(t, cycle.Cycle, 2)
	assert.Empty(t, report.Log)
}

func TestPlan_OptionalSharedReferencesDoNotCycle(t *testing.T) {
	e := newEnv(t)
	template := testutils.Dep("Template", "3", domain.KindShared)
	component := testutils.Dep("ComponentDef", "12", domain.KindShared)
	c := &discovery.Closure{
		Root:  template,
		Nodes: []discovery.Node{{Dependency: template}, {Dependency: component}},
		Edges: []discovery.Edge{
			{From: template.Key(), To: component.Key()},
			{From: component.Key(), To: template.Key()},
		},
	}

	order, err := install.New(e.targetReg).Plan(c)
	require.NoError(t, err)
	assert.Equal(t, []domain.Key{component.Key(), template.Key()}, order)
}

func TestInstall_ReservedIDIgnoresUnrelatedTargetRow(t *testing.T) {
	e := newEnv(t)
	e.target.Put(t, ports.CatalogEntry{Type: "Template", ID: "3", Name: "Unrelated"},
		ports.Record{"id": "3", "name": "Unrelated"})

	c := e.walk(t, testutils.Dep("Template", "3", domain.KindShared))
	report, err := install.New(e.targetReg).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)

	assert.Equal(t, []logLine{{"Template", domain.ActionCreated}}, lines(report.Log))
	assert.Equal(t, []string{"1000", "3"}, e.target.Records.Keys("templates"))
	assert.Equal(t, "Unrelated", e.target.Record(t, "Template", "3")["name"])
	assert.Equal(t, "Two columns", e.target.Record(t, "Template", "1000")["name"])
}

func TestInstall_ReplaceKeepsTargetWhenFileMissing(t *testing.T) {
	e := newEnv(t)
	e.source.Put(t, ports.CatalogEntry{Type: "Snippet", ID: "footer"}, ports.Record{"id": "footer", "html": "<p>new</p>"})
	e.target.Put(t, ports.CatalogEntry{Type: "Snippet", ID: "footer"}, ports.Record{"id": "footer", "html": "<p>old</p>"})

	c := e.walk(t, testutils.Dep("Snippet", "footer", domain.KindShared))
	report, err := install.New(e.targetReg).Install(context.Background(), memory.NewArchive(nil), c, e.importContext(t))
	require.NoError(t, err)

	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], domain.ErrMissingDependencyFile)
	assert.Empty(t, report.Log)
	assert.Equal(t, domain.OutcomeFailed, report.Outcome(domain.Key{Type: "Snippet", ID: "footer"}))
	assert.Equal(t, "<p>old</p>", e.target.Record(t, "Snippet", "footer")["html"])
}

func TestInstall_ReferenceToFailedObjectIsNotDefaulted(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Page", "5", domain.KindShared))
	archive := without(t, e.export(t, c), testutils.Dep("Template", "3", ""))

	report, err := install.New(e.targetReg).Install(context.Background(), archive, c, e.importContext(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidIDMappingTarget)

	var invalid *domain.InvalidIDMappingTargetError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "Template", invalid.ObjectType)
	assert.Equal(t, "3", invalid.ID)
	assert.Equal(t, "staging", invalid.SourceServer)

	require.Len(t, report.Errors, 1)
	assert.ErrorIs(t, report.Errors[0], domain.ErrMissingDependencyFile)
	assert.Equal(t, domain.OutcomeFailed, report.Outcome(domain.Key{Type: "Template", ID: "3"}))
	assert.Equal(t, domain.OutcomeFailed, report.Outcome(domain.Key{Type: "Page", ID: "5"}))
	assert.Empty(t, e.target.Records.Keys("pages"))
	assert.Equal(t, []logLine{{"ComponentDef", domain.ActionCreated}}, lines(report.Log))
}

type recordingLocker struct {
	keys []string
}

func (l *recordingLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	l.keys = append(l.keys, key)
	return fn(ctx)
}

func TestInstall_LocksTarget(t *testing.T) {
	e := newEnv(t)
	c := e.walk(t, testutils.Dep("Folder", "/Site", domain.KindShared))
	locker := &recordingLocker{}

	_, err := install.New(e.targetReg, install.WithLocker(locker)).Install(context.Background(), e.export(t, c), c, e.importContext(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"prod"}, locker.keys)
}
