package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashboard-service/internal/domain"
)

func recs(col string, values ...any) []domain.Record {
	out := make([]domain.Record, 0, len(values))
	for i, v := range values {
		out = append(out, domain.Record{"ID": i, col: v})
	}
	return out
}

func TestSumColumn(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 150.0, SumColumn(recs("IMPORTE", 100.0, nil, 50.0), "IMPORTE"))
	assert.Equal(t, 0.0, SumColumn(nil, "IMPORTE"))
	assert.Equal(t, 0.0, SumColumn(recs("IMPORTE", 1.0), "OTRA"))
	assert.Equal(t, 5.0, SumColumn(recs("IMPORTE", 5.0, "texto"), "IMPORTE"))
	assert.Equal(t, 0.3, SumColumn(recs("IMPORTE", 0.1, 0.2), "IMPORTE"), "decimal summation has no float drift")
}

func TestCountNonNull(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, CountNonNull(recs("X", 1.0, nil, "a"), "X"))
	assert.Equal(t, 0, CountNonNull(recs("X", 1.0), "Y"))
}

func TestGroupSum(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{"TIPO": "OBRA", "IMPORTE": 10.0},
		{"TIPO": nil, "IMPORTE": 5.0},
		{"TIPO": "MANT", "IMPORTE": 30.0},
		{"TIPO": "OBRA", "IMPORTE": nil},
		{"IMPORTE": 1.0},
		{"TIPO": "OBRA", "IMPORTE": 2.5},
	}

	groups := GroupSum(records, "TIPO", "IMPORTE")
	require.Len(t, groups, 3)
	assert.Equal(t, Group{Key: "OBRA", Total: 12.5, Count: 3}, groups[0])
	assert.Equal(t, Group{Null: true, Total: 6, Count: 2}, groups[1])
	assert.Equal(t, Group{Key: "MANT", Total: 30, Count: 1}, groups[2])

	sorted := SortByTotalDesc(groups)
	assert.Equal(t, []string{"MANT", "OBRA", ""}, []string{sorted[0].Key, sorted[1].Key, sorted[2].Key})
	assert.Equal(t, "OBRA", groups[0].Key, "sorting returns a copy")

	top := TopGroups(records, "TIPO", "IMPORTE", 1)
	require.Len(t, top, 1)
	assert.Equal(t, "MANT", top[0].Key)
}

func TestGroupSum_StringifiesKeys(t *testing.T) {
	t.Parallel()

	records := []domain.Record{{"CR": 4501.0, "V": 1.0}, {"CR": "4501", "V": 2.0}}
	groups := GroupSum(records, "CR", "V")
	require.Len(t, groups, 1)
	assert.Equal(t, 3.0, groups[0].Total)
}

func TestTopN(t *testing.T) {
	t.Parallel()

	records := recs("IMPORTE", 10.0, nil, 30.0, 20.0)
	top := TopN(records, "IMPORTE", 2)
	require.Len(t, top, 2)
	assert.Equal(t, 30.0, top[0]["IMPORTE"])
	assert.Equal(t, 20.0, top[1]["IMPORTE"])

	assert.Len(t, TopN(records, "IMPORTE", 10), 3, "null ranks are excluded")
	assert.Empty(t, TopN(records, "IMPORTE", 0))
}

func TestTopN_StableTies(t *testing.T) {
	t.Parallel()

	records := recs("IMPORTE", 5.0, 7.0, 5.0, 7.0)
	top := TopN(records, "IMPORTE", 4)
	ids := []any{top[0]["ID"], top[1]["ID"], top[2]["ID"], top[3]["ID"]}
	assert.Equal(t, []any{1, 3, 0, 2}, ids)
}

func TestValueCounts(t *testing.T) {
	t.Parallel()

	counts := ValueCounts(recs("ESTADO", "ABIERTA", "CERRADA", nil, "ABIERTA"), "ESTADO")
	assert.Equal(t, []ValueCount{{Value: "ABIERTA", Count: 2}, {Value: "CERRADA", Count: 1}}, counts)
}

func TestMonthlySum(t *testing.T) {
	t.Parallel()

	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }
	records := []domain.Record{
		{"Fecha": day(time.March, 2), "Total": 116.0},
		{"Fecha": day(time.January, 20), "Total": 1160.0},
		{"Fecha": nil, "Total": 9999.0},
		{"Fecha": day(time.January, 28), "Total": 580.0},
	}

	months := MonthlySum(records, "Fecha", "Total")
	assert.Equal(t, []MonthTotal{
		{Month: "2025-01", Total: 1740, Count: 2},
		{Month: "2025-03", Total: 116, Count: 1},
	}, months)
	_, leaked := records[0][monthKey]
	assert.False(t, leaked, "source records are not modified")
}

func TestDistinctAndFilters(t *testing.T) {
	t.Parallel()

	records := recs("ESTADO", "CERRADA", "ABIERTA", nil, "ABIERTA")
	assert.Equal(t, []string{"ABIERTA", "CERRADA"}, Distinct(records, "ESTADO"))
	assert.Len(t, FilterEquals(records, "ESTADO", "ABIERTA"), 2)
	assert.Empty(t, FilterEquals(records, "ESTADO", ""))
}

func TestSearch(t *testing.T) {
	t.Parallel()

	records := []domain.Record{
		{"Proyecto": "Sucursal Centro", "Monto": 10.0},
		{"Proyecto": "Torre Sur", "Monto": 1234.0},
	}
	assert.Len(t, Search(records, "centro"), 1)
	assert.Len(t, Search(records, "1234"), 1)
	assert.Len(t, Search(records, ""), 2)
	assert.Empty(t, Search(records, "norte"))
}

func TestCountContains(t *testing.T) {
	t.Parallel()

	records := recs("Estatus Vigencia", "Vencida", "vencido", "Vigente", nil)
	assert.Equal(t, 2, CountContains(records, "Estatus Vigencia", "Vencid", "vencid"))
}
