package marketplace

import (
	"context"
	"encoding/json"

	"mp_report_v1/internal/model"
)

// ==================== Wildberries ====================

// WB statistics API 的库存接口要求固定的起始日期才会返回全量快照
const wbStocksDateFrom = "2019-06-20"

// WBClient Wildberries statistics API 客户端
// 鉴权：Authorization 头直接携带 API Key
// 订单与库存接口均一次返回整个窗口，无分页
type WBClient struct {
	opts Options
}

func NewWBClient(opts Options) *WBClient {
	return &WBClient{opts: opts}
}

func (c *WBClient) Marketplace() model.Marketplace { return model.MarketplaceWB }

// FetchOrders 拉取上一周期的订单
// GET /api/v1/supplier/orders
func (c *WBClient) FetchOrders(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	from, _ := reportWeek(c.opts.now())

	var records []json.RawMessage
	resp, err := newHTTPClient(c.opts).R().
		SetContext(ctx).
		SetHeader("Authorization", acct.APIKey).
		SetQueryParams(map[string]string{
			"dateFrom": from.Format("2006-01-02T15:04:05"),
			"flag":     "0",
		}).
		SetResult(&records).
		Get("/api/v1/supplier/orders")
	if err != nil {
		return nil, wrapErr(model.MarketplaceWB, acct, "orders", err)
	}
	if resp.IsError() {
		return nil, wrapErr(model.MarketplaceWB, acct, "orders", statusErr(resp))
	}
	return records, nil
}

// FetchStocks 拉取库存全量快照
// GET /api/v1/supplier/stocks
func (c *WBClient) FetchStocks(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	var records []json.RawMessage
	resp, err := newHTTPClient(c.opts).R().
		SetContext(ctx).
		SetHeader("Authorization", acct.APIKey).
		SetQueryParam("dateFrom", wbStocksDateFrom).
		SetResult(&records).
		Get("/api/v1/supplier/stocks")
	if err != nil {
		return nil, wrapErr(model.MarketplaceWB, acct, "stocks", err)
	}
	if resp.IsError() {
		return nil, wrapErr(model.MarketplaceWB, acct, "stocks", statusErr(resp))
	}
	return records, nil
}
