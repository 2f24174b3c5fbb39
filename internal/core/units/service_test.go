package units

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-service/internal/core/workbook"
	"dashboard-service/internal/core/workbook/workbooktest"
	"dashboard-service/internal/domain"
)

func loadControl(t *testing.T) domain.Sets {
	t.Helper()
	wb, err := workbook.OpenWorkbook(workbooktest.Build(t, workbooktest.ControlSheets()...))
	require.NoError(t, err)
	t.Cleanup(func() { _ = wb.Close() })

	res := workbook.NewLoader(nil, nil).Load(wb)
	require.Empty(t, res.Errors)
	return res.Sets
}

func TestListBusinessUnits(t *testing.T) {
	t.Parallel()

	svc := NewService(workbook.Registry())
	names := svc.ListBusinessUnits(loadControl(t))

	assert.Contains(t, names, "SUCURSAL CENTRO NORTE")
	assert.Contains(t, names, "Centro Norte")
	assert.Contains(t, names, "centro norte", "original casing is kept")
	assert.Contains(t, names, "Torre Sur")
	assert.IsNonDecreasing(t, names)

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate %q", n)
		assert.Equal(t, strings.TrimSpace(n), n)
		assert.NotEmpty(t, n)
		seen[n] = true
	}
}

func TestListBusinessUnits_IgnoresKindsWithoutNameField(t *testing.T) {
	t.Parallel()

	sets := domain.Sets{
		domain.KindFacturacion2025: {Kind: domain.KindFacturacion2025, Records: []domain.Record{{"NO.": "F-1", "Razón social": "SERVMAC"}}},
		domain.KindObraMenor:       {Kind: domain.KindObraMenor, Records: []domain.Record{{"SUCURSAL": "  Norte  "}, {"SUCURSAL": nil}, {"SUCURSAL": "   "}}},
	}
	names := NewService(workbook.Registry()).ListBusinessUnits(sets)
	assert.Equal(t, []string{"Norte"}, names)
}

func TestResolve_EveryIndexedNameMatches(t *testing.T) {
	t.Parallel()

	sets := loadControl(t)
	svc := NewService(workbook.Registry())
	for _, name := range svc.ListBusinessUnits(sets) {
		view := svc.Resolve(sets, name)
		assert.False(t, view.Empty(), "indexed name %q resolves to nothing", name)
		assert.Empty(t, view.Suggestions)
	}
}

func TestResolve_CaseInsensitiveContainment(t *testing.T) {
	t.Parallel()

	sets := loadControl(t)
	view := NewService(workbook.Registry()).Resolve(sets, "  centro ")

	assert.Equal(t, "centro", view.Unit)
	assert.ElementsMatch(t, []domain.EntityKind{
		domain.KindOrdenes,
		domain.KindContratos,
		domain.KindObraMenor,
		domain.KindPrefacturas,
		domain.KindFianzas,
		domain.KindFacturasAdquira,
	}, kinds(view))

	require.Equal(t, 1, view.Sets[domain.KindOrdenes].Len())
	assert.Equal(t, "OC-001", view.Sets[domain.KindOrdenes].Records[0].Text("ID. PEDIDO COMPRADOR"))
	assert.NotContains(t, view.Sets, domain.KindProyectos2024, "kinds without matches are omitted")
}

func TestResolve_NoMatchSuggests(t *testing.T) {
	t.Parallel()

	sets := loadControl(t)
	view := NewService(workbook.Registry()).Resolve(sets, "centrox")

	assert.True(t, view.Empty())
	require.NotEmpty(t, view.Suggestions)
	assert.Contains(t, strings.ToUpper(view.Suggestions[0]), "CENTRO")
}

func TestResolve_EmptySelection(t *testing.T) {
	t.Parallel()

	view := NewService(workbook.Registry()).Resolve(loadControl(t), "   ")
	assert.True(t, view.Empty())
	assert.Empty(t, view.Suggestions)
}

func TestResolve_DeterministicAndIsolated(t *testing.T) {
	t.Parallel()

	sets := loadControl(t)
	svc := NewService(workbook.Registry())

	first := svc.Resolve(sets, "Centro Norte")
	second := svc.Resolve(sets, "Centro Norte")
	assert.Equal(t, first.Sets, second.Sets)

	before := sets[domain.KindObraMenor].Len()
	first.Sets[domain.KindObraMenor].Records[0]["SUCURSAL"] = "MODIFICADA"
	assert.Equal(t, "Centro Norte", sets[domain.KindObraMenor].Records[0].Text("SUCURSAL"), "view records are copies")
	assert.Equal(t, before, sets[domain.KindObraMenor].Len())
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	svc := NewService(workbook.Registry())
	names := []string{"Sucursal Mérida", "Torre Sur", "Valle Oriente"}

	got := svc.Suggest(names, "merida", 1)
	assert.Equal(t, []string{"Sucursal Mérida"}, got, "accents and case are ignored")
	assert.Nil(t, svc.Suggest(nil, "merida", 3))
	assert.Nil(t, svc.Suggest(names, "", 3))
	assert.Nil(t, svc.Suggest(names, "merida", 0))
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "CENTRO NORTE EDIFICIO", normalizeText("  Centro  Norte — Edificio "))
	assert.Equal(t, "FACTURACION", normalizeText("Facturación"))
}

func kinds(v *domain.View) []domain.EntityKind {
	var out []domain.EntityKind
	for k := range v.Sets {
		out = append(out, k)
	}
	return out
}
