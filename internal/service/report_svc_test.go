package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mp_report_v1/internal/model"
)

func openWorkbook(t *testing.T, rep *model.Report) *excelize.File {
	t.Helper()
	buf, err := NewReportService().Render(rep)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// 空结果集也必须产出完整的六张 Sheet，每张只有表头
func TestRender_EmptyReport(t *testing.T) {
	f := openWorkbook(t, model.NewReport())

	assert.ElementsMatch(t, []string{
		"WB_orders", "OZON_orders", "YANDEX_orders",
		"WB_stocks", "OZON_stocks", "YANDEX_stocks",
	}, f.GetSheetList())

	for _, mp := range model.AllMarketplaces() {
		rows, err := f.GetRows(model.SheetName(mp, model.KindOrders))
		require.NoError(t, err)
		require.Len(t, rows, 1, "空订单表只应有表头")
		assert.Equal(t, model.OrderHeaders(), rows[0])

		rows, err = f.GetRows(model.SheetName(mp, model.KindStocks))
		require.NoError(t, err)
		require.Len(t, rows, 1, "空库存表只应有表头")
		assert.Equal(t, model.StockHeaders(), rows[0])
	}
}

func TestRender_WritesRows(t *testing.T) {
	rep := model.NewReport()
	rep.Orders[model.MarketplaceWB] = []model.OrderRow{
		{
			OrderID:     "s-1",
			Article:     "art-1",
			Name:        "Носки",
			Quantity:    2,
			Price:       199.5,
			Status:      "active",
			Date:        "2025-08-12T10:00:00",
			Seller:      "PA-1",
			Marketplace: model.MarketplaceWB,
		},
	}
	rep.Stocks[model.MarketplaceOzon] = []model.StockRow{
		{
			Article:     "of-1",
			Name:        "Кружка",
			Warehouse:   "Тверь",
			Quantity:    7,
			Seller:      "PA-2",
			Marketplace: model.MarketplaceOzon,
		},
	}

	f := openWorkbook(t, rep)

	rows, err := f.GetRows("WB_orders")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"s-1", "art-1", "Носки", "2", "199.5", "active", "2025-08-12T10:00:00", "PA-1", "WB"}, rows[1])

	rows, err = f.GetRows("OZON_stocks")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"of-1", "Кружка", "Тверь", "7", "PA-2", "OZON"}, rows[1])

	// 其余表仍是只有表头的空表
	rows, err = f.GetRows("YANDEX_orders")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRender_PreservesRowOrder(t *testing.T) {
	rep := model.NewReport()
	for i := 0; i < 5; i++ {
		rep.Orders[model.MarketplaceWB] = append(rep.Orders[model.MarketplaceWB], model.OrderRow{
			OrderID:     string(rune('a' + i)),
			Seller:      "PA-1",
			Marketplace: model.MarketplaceWB,
		})
	}

	f := openWorkbook(t, rep)
	rows, err := f.GetRows("WB_orders")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	for i := 0; i < 5; i++ {
		assert.Equal(t, string(rune('a'+i)), rows[i+1][0])
	}
}
