package transit_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/transit"
	"github.com/aretw0/transit/internal/testutils"
	"github.com/aretw0/transit/pkg/adapters/memory"
	"github.com/aretw0/transit/pkg/adapters/redis"
	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/observability"
	"github.com/aretw0/transit/pkg/ports"
	"github.com/aretw0/transit/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, p *testutils.Platform, opts ...transit.Option) *transit.Engine {
	t.Helper()
	opts = append([]transit.Option{
		transit.WithServices(p.Services()),
		transit.WithDefinitions(testutils.Defs()...),
	}, opts...)
	eng, err := transit.New(opts...)
	require.NoError(t, err)
	return eng
}

func TestEngine_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := testutils.NewPlatform()
	testutils.SeedSite(t, src)
	dst := testutils.NewPlatform()

	source := newEngine(t, src, transit.WithName("staging"))
	target := newEngine(t, dst, transit.WithName("prod"))

	root, err := source.Lookup(ctx, "Page", "5")
	require.NoError(t, err)
	assert.Equal(t, "Home", root.Name())

	archive := memory.NewArchive(nil)
	pkg, err := source.Export(ctx, root, archive)
	require.NoError(t, err)
	assert.Equal(t, 6, pkg.Closure.Len())
	assert.Len(t, pkg.Files, 5, "the server role is not packaged")

	names, err := archive.List(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 5)

	report, err := target.Import(ctx, archive, pkg.Closure, "staging", "prod", transit.WithOperationID("op-1"))
	require.NoError(t, err)
	assert.Equal(t, "op-1", report.OperationID)
	assert.True(t, report.Complete())
	assert.Len(t, report.Log, 5)

	assert.Equal(t, "1000", dst.Record(t, "Page", "5")["template_id"])
	assert.Equal(t, []string{"1000:sidebar"}, dst.Records.Keys("component_instances"))
}

func TestEngine_ImportTwiceModifies(t *testing.T) {
	ctx := context.Background()
	src := testutils.NewPlatform()
	testutils.SeedSite(t, src)
	dst := testutils.NewPlatform()
	source, target := newEngine(t, src), newEngine(t, dst)

	root, err := source.Lookup(ctx, "Folder", "/Site")
	require.NoError(t, err)
	archive := memory.NewArchive(nil)
	pkg, err := source.Export(ctx, root, archive)
	require.NoError(t, err)

	_, err = target.Import(ctx, archive, pkg.Closure, "staging", "prod")
	require.NoError(t, err)
	report, err := target.Import(ctx, archive, pkg.Closure, "staging", "prod")
	require.NoError(t, err)

	require.Len(t, report.Log, 2)
	for _, e := range report.Log {
		assert.Equal(t, domain.ActionModified, e.Action)
	}
}

func TestEngine_New_InvalidDefinitions(t *testing.T) {
	_, err := transit.New(
		transit.WithServices(testutils.NewPlatform().Services()),
		transit.WithDefinitions(domain.DependencyDef{Type: "Ghost", Adapter: "nope"}),
	)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestEngine_New_MissingServices(t *testing.T) {
	_, err := transit.New(transit.WithDefinitions(testutils.Defs()...))
	require.Error(t, err)
	var initErr *domain.HandlerInitError
	assert.ErrorAs(t, err, &initErr)
}

func TestEngine_Lookup_NotFound(t *testing.T) {
	eng := newEngine(t, testutils.NewPlatform())
	_, err := eng.Lookup(context.Background(), "Page", "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_TypesAndRoots(t *testing.T) {
	p := testutils.NewPlatform()
	testutils.SeedSite(t, p)
	eng := newEngine(t, p)

	assert.Contains(t, eng.Types(), "ComponentInstance")
	def, err := eng.Def("Page")
	require.NoError(t, err)
	assert.True(t, def.SupportsIDTypes)

	roots, err := eng.Roots(context.Background(), "Template", domain.Scope{})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "3", roots[0].ID)
}

func TestEngine_ExportSystemRoot(t *testing.T) {
	p := testutils.NewPlatform()
	testutils.SeedSite(t, p)
	eng := newEngine(t, p)

	_, err := eng.Export(context.Background(), testutils.Dep("SystemGroup", "admins", domain.KindSystem), memory.NewArchive(nil))
	assert.ErrorIs(t, err, domain.ErrIllegalArgument)
}

func TestEngine_Hooks(t *testing.T) {
	ctx := context.Background()
	src := testutils.NewPlatform()
	testutils.SeedSite(t, src)

	m, err := observability.NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	source := newEngine(t, src, transit.WithHooks(m.Hooks()))
	target := newEngine(t, testutils.NewPlatform(), transit.WithHooks(m.Hooks()))

	root, err := source.Lookup(ctx, "Folder", "/Site")
	require.NoError(t, err)
	archive := memory.NewArchive(nil)
	pkg, err := source.Export(ctx, root, archive)
	require.NoError(t, err)
	_, err = target.Import(ctx, archive, pkg.Closure, "staging", "prod")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Actions.WithLabelValues("FolderDef", "created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Discovered.WithLabelValues("FolderContents", "true")))
}

func TestEngine_RedisStoresAndLocker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	src := testutils.NewPlatform()
	testutils.SeedSite(t, src)
	source := newEngine(t, src)

	var journal ports.TransactionLog
	stores := func(opID string) (ports.MappingStore, ports.TransactionLog, error) {
		journal = redis.NewTransactionLog(client, opID)
		return redis.NewMappingStore(client, opID), journal, nil
	}
	locks := session.NewManager(session.WithLocker(redis.NewLocker(client, "transit:")))
	target := newEngine(t, testutils.NewPlatform(), transit.WithStores(stores), transit.WithLocker(locks))

	root, err := source.Lookup(ctx, "Page", "5")
	require.NoError(t, err)
	archive := memory.NewArchive(nil)
	pkg, err := source.Export(ctx, root, archive)
	require.NoError(t, err)

	report, err := target.Import(ctx, archive, pkg.Closure, "staging", "prod", transit.WithOperationID("op-redis"))
	require.NoError(t, err)

	entries, err := journal.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Log, entries)

	assert.False(t, mr.Exists("transit:mappings:op-redis"), "mappings are discarded after the import")
	assert.True(t, mr.Exists("transit:journal:op-redis"))
	assert.False(t, mr.Exists("transit:lock:prod"))
}
