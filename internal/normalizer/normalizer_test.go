package normalizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mp_report_v1/internal/model"
)

func rawRecords(records ...string) []json.RawMessage {
	raw := make([]json.RawMessage, len(records))
	for i, r := range records {
		raw[i] = json.RawMessage(r)
	}
	return raw
}

func acct(mp model.Marketplace) model.Account {
	return model.Account{Marketplace: mp, Label: "PA-1"}
}

// ==================== 订单 ====================

func TestNormalizeOrders_WB(t *testing.T) {
	raw := rawRecords(
		`{"srid":"s-1","supplierArticle":"art-1","subject":"Носки","priceWithDisc":199.5,"date":"2025-08-12T10:00:00","isCancel":false}`,
		`{"gNumber":"g-2","supplierArticle":"art-2","isCancel":true}`,
	)

	rows, errs := NormalizeOrders(acct(model.MarketplaceWB), raw)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, model.OrderRow{
		OrderID:     "s-1",
		Article:     "art-1",
		Name:        "Носки",
		Quantity:    1,
		Price:       199.5,
		Status:      "active",
		Date:        "2025-08-12T10:00:00",
		Seller:      "PA-1",
		Marketplace: model.MarketplaceWB,
	}, rows[0])

	// srid 缺失时退回 gNumber
	assert.Equal(t, "g-2", rows[1].OrderID)
	assert.Equal(t, "canceled", rows[1].Status)
}

func TestNormalizeOrders_WB_DropsRecordWithoutID(t *testing.T) {
	raw := rawRecords(
		`{"supplierArticle":"no-id"}`,
		`{"srid":"s-ok","supplierArticle":"art"}`,
	)

	rows, errs := NormalizeOrders(acct(model.MarketplaceWB), raw)

	// 坏记录只影响自己，批次中其余记录照常产出
	require.Len(t, rows, 1)
	assert.Equal(t, "s-ok", rows[0].OrderID)

	require.Len(t, errs, 1)
	var recErr *model.RecordError
	require.ErrorAs(t, errs[0], &recErr)
	assert.Equal(t, 0, recErr.Index)
	assert.Equal(t, "srid", recErr.Field)
}

func TestNormalizeOrders_Ozon_FlattensProducts(t *testing.T) {
	raw := rawRecords(
		`{"posting_number":"p-1","status":"delivered","created_at":"2025-08-12T00:00:00Z","products":[
			{"name":"Кружка","offer_id":"of-1","sku":101,"price":"350.00","quantity":2},
			{"name":"Тарелка","sku":102,"price":"bad","quantity":1}
		]}`,
		`{"posting_number":"p-2","status":"awaiting","in_process_at":"2025-08-13T00:00:00Z","products":[]}`,
	)

	rows, errs := NormalizeOrders(acct(model.MarketplaceOzon), raw)
	require.Empty(t, errs)
	require.Len(t, rows, 2)

	assert.Equal(t, "p-1", rows[0].OrderID)
	assert.Equal(t, "of-1", rows[0].Article)
	assert.Equal(t, 350.0, rows[0].Price)
	assert.Equal(t, 2, rows[0].Quantity)

	// offer_id 缺失时回退 sku；价格解析失败填零值
	assert.Equal(t, "102", rows[1].Article)
	assert.Equal(t, 0.0, rows[1].Price)
	// FBS 单取 in_process_at 作为日期：p-2 无商品行，不产出行
}

func TestNormalizeOrders_Yandex_FlattensItems(t *testing.T) {
	raw := rawRecords(
		`{"id":9001,"status":"PROCESSING","creationDate":"12-08-2025","items":[
			{"offerId":"ya-1","offerName":"Чайник","price":1500,"count":1},
			{"offerId":"ya-2","offerName":"Ложка","price":80,"count":3}
		]}`,
		`{"status":"DELIVERED","items":[{"offerId":"ya-3"}]}`,
	)

	rows, errs := NormalizeOrders(acct(model.MarketplaceYandex), raw)

	// 第二条缺少订单 id，整条丢弃
	require.Len(t, errs, 1)
	require.Len(t, rows, 2)
	assert.Equal(t, "9001", rows[0].OrderID)
	assert.Equal(t, "ya-2", rows[1].Article)
	assert.Equal(t, 3, rows[1].Quantity)
}

// ==================== 库存 ====================

func TestNormalizeStocks_WB(t *testing.T) {
	raw := rawRecords(
		`{"supplierArticle":"art-1","subject":"Носки","warehouseName":"Коледино","quantity":42}`,
		`{"quantity":5}`,
	)

	rows, errs := NormalizeStocks(acct(model.MarketplaceWB), raw)
	require.Len(t, rows, 1)
	require.Len(t, errs, 1)

	assert.Equal(t, model.StockRow{
		Article:     "art-1",
		Name:        "Носки",
		Warehouse:   "Коледино",
		Quantity:    42,
		Seller:      "PA-1",
		Marketplace: model.MarketplaceWB,
	}, rows[0])
}

func TestNormalizeStocks_Ozon_DropsRecordWithoutSKU(t *testing.T) {
	raw := rawRecords(
		`{"name":"Кружка","offer_id":"of-1","sku":101,"available_stock_count":7,"warehouse_name":"Тверь"}`,
		`{"name":"Без SKU","offer_id":"of-2","available_stock_count":3}`,
	)

	rows, errs := NormalizeStocks(acct(model.MarketplaceOzon), raw)

	require.Len(t, rows, 1)
	assert.Equal(t, "of-1", rows[0].Article)
	assert.Equal(t, 7, rows[0].Quantity)

	require.Len(t, errs, 1)
	var recErr *model.RecordError
	require.ErrorAs(t, errs[0], &recErr)
	assert.Equal(t, "sku", recErr.Field)
	assert.Equal(t, 1, recErr.Index)
}

func TestNormalizeStocks_Yandex_FlattensWarehouses(t *testing.T) {
	raw := rawRecords(
		`{"warehouseId":100,"offers":[
			{"offerId":"ya-1","offerName":"Чайник","stocks":[{"type":"AVAILABLE","count":5},{"type":"DEFECT","count":2}]},
			{"stocks":[{"type":"AVAILABLE","count":1}]}
		]}`,
	)

	rows, errs := NormalizeStocks(acct(model.MarketplaceYandex), raw)

	// 在库数量只累计 AVAILABLE；缺 offerId 的条目丢弃
	require.Len(t, rows, 1)
	assert.Equal(t, "ya-1", rows[0].Article)
	assert.Equal(t, "Чайник", rows[0].Name)
	assert.Equal(t, "100", rows[0].Warehouse)
	assert.Equal(t, 5, rows[0].Quantity)
	require.Len(t, errs, 1)
}

func TestNormalize_EmptyInput(t *testing.T) {
	for _, mp := range model.AllMarketplaces() {
		rows, errs := NormalizeOrders(acct(mp), nil)
		assert.Empty(t, rows)
		assert.Empty(t, errs)

		stockRows, stockErrs := NormalizeStocks(acct(mp), nil)
		assert.Empty(t, stockRows)
		assert.Empty(t, stockErrs)
	}
}

func TestNormalize_RowsAlwaysTagged(t *testing.T) {
	raw := rawRecords(`{"srid":"s-1","supplierArticle":"art-1"}`)
	rows, _ := NormalizeOrders(acct(model.MarketplaceWB), raw)
	require.Len(t, rows, 1)
	assert.NotEmpty(t, rows[0].Seller)
	assert.NotEmpty(t, rows[0].Marketplace)
}
