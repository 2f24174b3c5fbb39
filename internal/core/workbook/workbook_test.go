package workbook

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-service/internal/core/aggregate"
	"dashboard-service/internal/core/workbook/workbooktest"
	"dashboard-service/internal/domain"
	"dashboard-service/internal/metrics"
)

func openFixture(t *testing.T, sheets ...workbooktest.Sheet) Workbook {
	t.Helper()
	wb, err := OpenWorkbook(workbooktest.Build(t, sheets...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })
	return wb
}

func ordenesSpec(t *testing.T) domain.SheetSpec {
	t.Helper()
	spec, ok := SpecFor(Registry(), domain.KindOrdenes)
	require.True(t, ok)
	return spec
}

func TestLoadSheet_TypesAndKeyFilter(t *testing.T) {
	t.Parallel()

	wb := openFixture(t, workbooktest.ControlSheets()...)
	set, err := LoadSheet(wb, ordenesSpec(t))
	require.NoError(t, err)

	require.Equal(t, 3, set.Len(), "row without ID. PEDIDO COMPRADOR must be dropped")
	assert.Contains(t, set.Columns, "ID. PEDIDO COMPRADOR", "header whitespace is trimmed")

	first := set.Records[0]
	assert.Equal(t, "OC-001", first.Text("ID. PEDIDO COMPRADOR"))
	date, ok := first.Date("FECHA")
	require.True(t, ok)
	assert.True(t, workbooktest.Date(2025, time.January, 10).Equal(date))
	amount, ok := first.Number("IMPORTE TOTAL")
	require.True(t, ok)
	assert.InDelta(t, 1000.5, amount, 1e-9)

	second := set.Records[1]
	amount, ok = second.Number("IMPORTE TOTAL")
	require.True(t, ok)
	assert.InDelta(t, 2500, amount, 1e-9)
	assert.True(t, second.IsNull("IMPORTE DE CIERRE"))

	third := set.Records[2]
	assert.Equal(t, "OC-003", third.Text("ID. PEDIDO COMPRADOR"))
	assert.True(t, third.IsNull("FECHA"), "unparseable date becomes null, row is kept")
	assert.True(t, third.IsNull("IMPORTE TOTAL"), "non-numeric amount becomes null, row is kept")

	for _, rec := range set.Records {
		assert.False(t, rec.IsNull("ID. PEDIDO COMPRADOR"))
	}
}

func TestLoadSheet_DeclaredColumnsMissingAreIgnored(t *testing.T) {
	t.Parallel()

	wb := openFixture(t, workbooktest.ControlSheets()...)
	set, err := LoadSheet(wb, ordenesSpec(t))
	require.NoError(t, err)

	assert.False(t, set.HasColumn("BALANCE"))
	assert.Nil(t, set.Records[0].Get("BALANCE"))
}

func TestLoadSheet_UndeclaredColumnsKeepStoredType(t *testing.T) {
	t.Parallel()

	spec, ok := SpecFor(Registry(), domain.KindProyectos2024)
	require.True(t, ok)

	wb := openFixture(t, workbooktest.Sheet{Name: "Proyectos 2024", Rows: [][]any{
		{"PROYECTOS 2024"},
		{"Llave comité /Clave UDA", "CR", "Sucursal", "Fecha de cierre", "Días transcurridos", "Importe de cierre"},
		{"UDA-1", "4503", "Torre Sur", workbooktest.Date(2025, time.March, 15), 12, 1000},
		{"UDA-2", "4504", "Torre Norte", nil, 8.5, 500},
	}})

	set, err := LoadSheet(wb, spec)
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	first := set.Records[0]
	closed, ok := first.Get("Fecha de cierre").(time.Time)
	require.True(t, ok, "date cell outside the declared columns stays a date")
	assert.True(t, workbooktest.Date(2025, time.March, 15).Equal(closed))
	assert.Equal(t, 12.0, first.Get("Días transcurridos"))
	assert.Equal(t, "4503", first.Get("CR"), "text cells stay text even when they look numeric")
	assert.True(t, set.Records[1].IsNull("Fecha de cierre"))

	assert.InDelta(t, 20.5, aggregate.SumColumn(set.Records, "Días transcurridos"), 1e-9)
	assert.Len(t, aggregate.Search(set.Records, "2025-03"), 1)
}

func TestIsDateFormat(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"dd/mm/yyyy":           true,
		"yyyy-mm-dd hh:mm":     true,
		"[$-80A]d-mmm-yy":      true,
		"#,##0.00":             false,
		"General":              false,
		"h:mm AM/PM":           false,
		`"Día "0`:              false,
		`[Red]$#,##0.00;\-0`: false,
	}
	for code, want := range cases {
		assert.Equal(t, want, isDateFormat(code), code)
	}
	assert.True(t, isDateFormatID(14))
	assert.False(t, isDateFormatID(4))
}

func TestLoadSheet_MissingSheet(t *testing.T) {
	t.Parallel()

	wb := openFixture(t, workbooktest.Sheet{Name: "OTRA", Rows: [][]any{{"a"}}})
	_, err := LoadSheet(wb, ordenesSpec(t))

	var loadErr *domain.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, domain.MissingSheet, loadErr.Type)
	assert.Equal(t, "REGISTRO ORDEN DE COMPRA", loadErr.Sheet)
}

func TestLoadSheet_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string][][]any{
		"no header row":  {{"solo título"}},
		"no key column":  {{"título"}, {"FECHA", "IMPORTE TOTAL"}, {"2025-01-01", 1}},
		"blank header":   {{"título"}, {nil, nil}, {"x", "y"}},
		"wrong offset 0": {{"ID. PEDIDO COMPRADOR"}, {"OC-1"}},
	}
	for name, rows := range cases {
		rows := rows
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			wb := openFixture(t, workbooktest.Sheet{Name: "REGISTRO ORDEN DE COMPRA", Rows: rows})
			_, err := LoadSheet(wb, ordenesSpec(t))

			var loadErr *domain.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Equal(t, domain.MalformedSheet, loadErr.Type)
		})
	}
}

func TestBuildColumns(t *testing.T) {
	t.Parallel()

	cols, recognized := buildColumns([]string{" A ", "", "A", "B", "A"}, 6)
	assert.Equal(t, []string{"A", "Unnamed: 1", "A.1", "B", "A.2", "Unnamed: 5"}, cols)
	assert.Equal(t, 4, recognized)
}

func TestLoader_IsolatesSheetFailures(t *testing.T) {
	t.Parallel()

	sheets := workbooktest.Without(workbooktest.ControlSheets(), "Facturación 2025")
	sheets = append(sheets, workbooktest.Sheet{Name: "Facturación 2025", Rows: [][]any{{"sin columnas útiles"}}})
	wb := openFixture(t, workbooktest.Without(sheets, "CONTROL DE FIANZAS")...)

	res := NewLoader(nil, nil).Load(wb)

	assert.Len(t, res.Sets, 7)
	assert.NotContains(t, res.Sets, domain.KindFianzas)
	assert.NotContains(t, res.Sets, domain.KindFacturacion2025)
	require.Len(t, res.Errors, 2)

	types := map[domain.EntityKind]domain.ErrorType{}
	for _, e := range res.Errors {
		types[e.Kind] = e.Type
	}
	assert.Equal(t, domain.MalformedSheet, types[domain.KindFacturacion2025])
	assert.Equal(t, domain.MissingSheet, types[domain.KindFianzas])
	assert.Equal(t, 3, res.Sets[domain.KindOrdenes].Len())
}

func TestLoader_OneMissingSheetLeavesOthers(t *testing.T) {
	t.Parallel()

	wb := openFixture(t, workbooktest.Without(workbooktest.ControlSheets(), "CONTRATOS || ONE TEAM")...)
	res := NewLoader(nil, nil).Load(wb)

	assert.Len(t, res.Sets, len(Registry())-1)
	_, present := res.Sets[domain.KindContratos]
	assert.False(t, present, "missing kind is absent, not an empty set")
	require.Len(t, res.Errors, 1)
	assert.Equal(t, domain.KindContratos, res.Errors[0].Kind)
}

func TestLoader_PreservesSourceOrder(t *testing.T) {
	t.Parallel()

	wb := openFixture(t, workbooktest.ControlSheets()...)
	res := NewLoader(nil, nil).Load(wb)

	var keys []string
	for _, r := range res.Sets.Records(domain.KindFacturacion2025) {
		keys = append(keys, r.Text("NO."))
	}
	assert.Equal(t, []string{"F-1", "F-2", "F-3"}, keys)
}

func TestEndToEnd_OrdersSum(t *testing.T) {
	t.Parallel()

	data := workbooktest.Build(t, workbooktest.Sheet{Name: "REGISTRO ORDEN DE COMPRA", Rows: [][]any{
		{"REGISTRO"},
		{"ID. PEDIDO COMPRADOR", "IMPORTE TOTAL"},
		{"OC-1", 150.25},
		{nil, 999},
		{"OC-2", "sin importe"},
	}})

	cache := NewCache(NewLoader(nil, nil), nil)
	res, err := cache.Load(context.Background(), data, "test", OriginUpload)
	require.NoError(t, err)

	ordenes := res.Sets.Records(domain.KindOrdenes)
	require.Len(t, ordenes, 2)
	assert.InDelta(t, 150.25, aggregate.SumColumn(ordenes, "IMPORTE TOTAL"), 1e-9)
}

func TestCache_IdempotentAndContentAddressed(t *testing.T) {
	t.Parallel()

	data := workbooktest.Build(t, workbooktest.ControlSheets()...)
	cache := NewCache(NewLoader(nil, nil), nil)

	_, err := cache.Current()
	assert.ErrorIs(t, err, domain.ErrNoWorkbook)

	first, err := cache.Load(context.Background(), data, "a", OriginUpload)
	require.NoError(t, err)
	second, err := cache.Load(context.Background(), append([]byte(nil), data...), "b", OriginUpload)
	require.NoError(t, err)
	assert.Same(t, first, second, "identical content is served from cache")

	fresh := NewCache(NewLoader(nil, nil), nil)
	third, err := fresh.Load(context.Background(), data, "c", OriginUpload)
	require.NoError(t, err)
	assert.Equal(t, first.Sets, third.Sets, "reparsing identical bytes yields identical record sets")

	other := workbooktest.Build(t, workbooktest.Without(workbooktest.ControlSheets(), "OBRA MENOR")...)
	replaced, err := cache.Load(context.Background(), other, "d", OriginUpload)
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, replaced.Digest)

	cur, err := cache.Current()
	require.NoError(t, err)
	assert.Same(t, replaced, cur)
	assert.Len(t, first.Sets, len(Registry()), "old snapshot is untouched by the replacement")

	cache.Invalidate()
	_, err = cache.Current()
	assert.ErrorIs(t, err, domain.ErrNoWorkbook)
}

func TestCache_ConcurrentLoadsSeeWholeSnapshots(t *testing.T) {
	t.Parallel()

	a := workbooktest.Build(t, workbooktest.ControlSheets()...)
	b := workbooktest.Build(t, workbooktest.Without(workbooktest.ControlSheets(), "OBRA MENOR")...)
	cache := NewCache(NewLoader(nil, nil), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		data := a
		if i%2 == 1 {
			data = b
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := cache.Load(context.Background(), data, "concurrent", OriginUpload)
			assert.NoError(t, err)
			n := len(res.Sets)
			assert.True(t, n == len(Registry()) || n == len(Registry())-1)
		}()
	}
	wg.Wait()

	cur, err := cache.Current()
	require.NoError(t, err)
	assert.Contains(t, []string{Digest(a), Digest(b)}, cur.Digest)
}

func TestOpenWorkbook_RejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := OpenWorkbook([]byte("esto no es un libro"))
	assert.Error(t, err)
}

// The metrics tests below touch process-wide collectors and do not run in
// parallel.

func TestCache_LoadMetricsUseOriginNotFileName(t *testing.T) {
	data := workbooktest.Build(t, workbooktest.ControlSheets()...)
	cache := NewCache(NewLoader(nil, nil), nil)

	before := testutil.ToFloat64(metrics.WorkbookLoadsTotal.WithLabelValues(string(OriginUpload), "success"))
	res, err := cache.Load(context.Background(), data, "SISTEMA_cliente_7f3a.xlsx", OriginUpload)
	require.NoError(t, err)
	assert.Equal(t, "SISTEMA_cliente_7f3a.xlsx", res.Source)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.WorkbookLoadsTotal.WithLabelValues(string(OriginUpload), "success")))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				assert.NotEqual(t, "SISTEMA_cliente_7f3a.xlsx", label.GetValue(), "%s carries the file name", mf.GetName())
			}
		}
	}
}

func TestCache_RecordsGaugeFollowsStoredSnapshot(t *testing.T) {
	gauge := func() float64 {
		return testutil.ToFloat64(metrics.RecordsLoaded.WithLabelValues(string(domain.KindOrdenes)))
	}

	cache := NewCache(NewLoader(nil, nil), nil)
	data := workbooktest.Build(t, workbooktest.ControlSheets()...)
	_, err := cache.Load(context.Background(), data, "a", OriginStartup)
	require.NoError(t, err)
	assert.Equal(t, 3.0, gauge())

	cache.Invalidate()
	assert.Equal(t, 0.0, gauge())

	// a newer load has already been stored; this slower one must not publish
	cache.mu.Lock()
	cache.storedSeq = cache.seq + 10
	cache.mu.Unlock()

	res, err := cache.Load(context.Background(), data, "stale", OriginReload)
	require.NoError(t, err)
	assert.Len(t, res.Sets.Records(domain.KindOrdenes), 3)
	_, err = cache.Current()
	assert.ErrorIs(t, err, domain.ErrNoWorkbook)
	assert.Equal(t, 0.0, gauge())
}

func TestResolvePath_SkipsUnreadableCandidates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o600))
	found := filepath.Join(dir, "control.xlsx")
	require.NoError(t, os.WriteFile(found, []byte("x"), 0o600))

	// stat through a regular file fails with ENOTDIR, not ENOENT
	broken := filepath.Join(plain, "control.xlsx")

	got, err := ResolvePath("", broken, filepath.Join(dir, "missing.xlsx"), found)
	require.NoError(t, err)
	assert.Equal(t, found, got)

	_, err = ResolvePath(broken, filepath.Join(dir, "missing.xlsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "not a directory")
}
