package marketplace

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"

	"mp_report_v1/internal/model"
)

// ==================== Ozon ====================

const (
	ozonPageLimit  = 1000
	ozonStockChunk = 100

	ozonTimeLayout = "2006-01-02T15:04:05.000Z"
)

// OzonClient Ozon seller API 客户端
// 鉴权：Client-Id + Api-Key 两个请求头
// 订单 = FBO + FBS 两类发货单的并集；库存需要先通过商品属性接口发现 SKU 列表
type OzonClient struct {
	opts Options
}

func NewOzonClient(opts Options) *OzonClient {
	return &OzonClient{opts: opts}
}

func (c *OzonClient) Marketplace() model.Marketplace { return model.MarketplaceOzon }

func (c *OzonClient) request(ctx context.Context, acct model.Account) *resty.Request {
	return newHTTPClient(c.opts).R().
		SetContext(ctx).
		SetHeader("Client-Id", acct.ClientID).
		SetHeader("Api-Key", acct.APIKey)
}

// ==================== 订单 ====================

type ozonFboListResp struct {
	Result []json.RawMessage `json:"result"`
}

type ozonFbsListResp struct {
	Result struct {
		Postings []json.RawMessage `json:"postings"`
	} `json:"result"`
}

// FetchOrders 拉取报表周期内的 FBO + FBS 发货单
func (c *OzonClient) FetchOrders(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	from, to := reportWeek(c.opts.now())

	records, err := c.fetchFBO(ctx, acct, from, to)
	if err != nil {
		return nil, err
	}
	fbs, err := c.fetchFBS(ctx, acct, from, to)
	if err != nil {
		return nil, err
	}
	return append(records, fbs...), nil
}

// fetchFBO FBO 接口没有稳定分页，按天切窗口逐段拉取
// POST /v2/posting/fbo/list
func (c *OzonClient) fetchFBO(ctx context.Context, acct model.Account, from, to time.Time) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		chunkTo := day.AddDate(0, 0, 1)
		if chunkTo.After(to) {
			chunkTo = to
		}

		var res ozonFboListResp
		resp, err := c.request(ctx, acct).
			SetBody(map[string]interface{}{
				"filter": map[string]string{
					"since": day.Format(ozonTimeLayout),
					"to":    chunkTo.Format(ozonTimeLayout),
				},
				"limit": ozonPageLimit,
			}).
			SetResult(&res).
			Post("/v2/posting/fbo/list")
		if err != nil {
			return nil, wrapErr(model.MarketplaceOzon, acct, "orders", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceOzon, acct, "orders", statusErr(resp))
		}
		records = append(records, res.Result...)
	}
	return records, nil
}

// fetchFBS 按 offset 翻页直到返回不满一页
// POST /v3/posting/fbs/list
func (c *OzonClient) fetchFBS(ctx context.Context, acct model.Account, from, to time.Time) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for offset := 0; ; offset += ozonPageLimit {
		var res ozonFbsListResp
		resp, err := c.request(ctx, acct).
			SetBody(map[string]interface{}{
				"filter": map[string]string{
					"since": from.Format(ozonTimeLayout),
					"to":    to.Format(ozonTimeLayout),
				},
				"limit":  ozonPageLimit,
				"offset": offset,
			}).
			SetResult(&res).
			Post("/v3/posting/fbs/list")
		if err != nil {
			return nil, wrapErr(model.MarketplaceOzon, acct, "orders", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceOzon, acct, "orders", statusErr(resp))
		}

		records = append(records, res.Result.Postings...)
		if len(res.Result.Postings) < ozonPageLimit {
			return records, nil
		}
	}
}

// ==================== 库存 ====================

type ozonAttrResp struct {
	Result []struct {
		SKU json.Number `json:"sku"`
	} `json:"result"`
}

type ozonStocksResp struct {
	Items []json.RawMessage `json:"items"`
}

// FetchStocks 先通过商品属性接口拿到账号下全部 SKU，
// 再按 100 个一批调用分析库存接口
func (c *OzonClient) FetchStocks(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	skus, err := c.fetchSKUs(ctx, acct)
	if err != nil {
		return nil, err
	}
	if len(skus) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	for i := 0; i < len(skus); i += ozonStockChunk {
		end := i + ozonStockChunk
		if end > len(skus) {
			end = len(skus)
		}

		var res ozonStocksResp
		resp, err := c.request(ctx, acct).
			SetBody(map[string]interface{}{"skus": skus[i:end]}).
			SetResult(&res).
			Post("/v1/analytics/stocks")
		if err != nil {
			return nil, wrapErr(model.MarketplaceOzon, acct, "stocks", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceOzon, acct, "stocks", statusErr(resp))
		}
		records = append(records, res.Items...)
	}
	return records, nil
}

// fetchSKUs 通过商品属性接口发现账号下的 SKU 列表
// POST /v4/product/info/attributes
func (c *OzonClient) fetchSKUs(ctx context.Context, acct model.Account) ([]string, error) {
	var res ozonAttrResp
	resp, err := c.request(ctx, acct).
		SetBody(map[string]interface{}{
			"filter": map[string]interface{}{},
			"limit":  ozonPageLimit,
		}).
		SetResult(&res).
		Post("/v4/product/info/attributes")
	if err != nil {
		return nil, wrapErr(model.MarketplaceOzon, acct, "stocks", err)
	}
	if resp.IsError() {
		return nil, wrapErr(model.MarketplaceOzon, acct, "stocks", statusErr(resp))
	}

	skus := make([]string, 0, len(res.Result))
	for _, p := range res.Result {
		if p.SKU != "" {
			skus = append(skus, p.SKU.String())
		}
	}
	return skus, nil
}
