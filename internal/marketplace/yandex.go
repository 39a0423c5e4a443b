package marketplace

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/go-resty/resty/v2"

	"mp_report_v1/internal/model"
)

// ==================== Yandex Market ====================

// YandexClient Yandex Market partner API 客户端
// 鉴权：Api-Key 请求头；分页统一使用 page_token
// 库存只保留 FBY 仓（先拉仓库列表，再过滤库存记录），
// 商品名称不在库存接口里，需要再调 offer-mappings 按 offerId 并入
type YandexClient struct {
	opts Options
}

func NewYandexClient(opts Options) *YandexClient {
	return &YandexClient{opts: opts}
}

func (c *YandexClient) Marketplace() model.Marketplace { return model.MarketplaceYandex }

func (c *YandexClient) request(ctx context.Context, acct model.Account) *resty.Request {
	return newHTTPClient(c.opts).R().
		SetContext(ctx).
		SetHeader("Api-Key", acct.APIKey)
}

// ==================== 订单 ====================

type yandexOrdersResp struct {
	Orders []json.RawMessage `json:"orders"`
	Paging struct {
		NextPageToken string `json:"nextPageToken"`
	} `json:"paging"`
}

// FetchOrders 按 page_token 翻页拉取报表周期内的订单
// GET /campaigns/{campaignId}/orders
func (c *YandexClient) FetchOrders(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	from, to := reportWeek(c.opts.now())

	var records []json.RawMessage
	token := ""
	for {
		req := c.request(ctx, acct).
			SetPathParam("campaignId", acct.CampaignID).
			SetQueryParams(map[string]string{
				"fromDate": from.Format("2006-01-02"),
				"toDate":   to.Format("2006-01-02"),
			})
		if token != "" {
			req.SetQueryParam("page_token", token)
		}

		var res yandexOrdersResp
		resp, err := req.SetResult(&res).Get("/campaigns/{campaignId}/orders")
		if err != nil {
			return nil, wrapErr(model.MarketplaceYandex, acct, "orders", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceYandex, acct, "orders", statusErr(resp))
		}

		records = append(records, res.Orders...)
		token = res.Paging.NextPageToken
		if token == "" {
			return records, nil
		}
	}
}

// ==================== 库存 ====================

type yandexWarehousesResp struct {
	Result struct {
		Warehouses []struct {
			ID json.Number `json:"id"`
		} `json:"warehouses"`
	} `json:"result"`
}

type yandexStocksResp struct {
	Result struct {
		Warehouses []json.RawMessage `json:"warehouses"`
		Paging     struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
	} `json:"result"`
}

// FetchStocks 拉取各仓库存，过滤出 FBY 仓的记录并并入商品名称
// POST /campaigns/{campaignId}/offers/stocks
func (c *YandexClient) FetchStocks(ctx context.Context, acct model.Account) ([]json.RawMessage, error) {
	fby, err := c.fetchFBYWarehouses(ctx, acct)
	if err != nil {
		return nil, err
	}
	names, err := c.fetchOfferNames(ctx, acct)
	if err != nil {
		return nil, err
	}

	var records []json.RawMessage
	token := ""
	for {
		req := c.request(ctx, acct).
			SetPathParam("campaignId", acct.CampaignID)
		if token != "" {
			req.SetQueryParam("page_token", token)
		}

		var res yandexStocksResp
		resp, err := req.SetResult(&res).Post("/campaigns/{campaignId}/offers/stocks")
		if err != nil {
			return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", statusErr(resp))
		}

		for _, raw := range res.Result.Warehouses {
			var wh struct {
				WarehouseID json.Number `json:"warehouseId"`
			}
			// 解析失败的记录交给 normalizer 按缺失字段处理，这里不拦截
			if err := json.Unmarshal(raw, &wh); err == nil {
				if _, ok := fby[wh.WarehouseID.String()]; !ok {
					continue
				}
			}
			records = append(records, withOfferNames(raw, names))
		}

		token = res.Result.Paging.NextPageToken
		if token == "" {
			return records, nil
		}
	}
}

type yandexMappingsResp struct {
	Result struct {
		OfferMappings []struct {
			Offer struct {
				OfferID string `json:"offerId"`
				Name    string `json:"name"`
			} `json:"offer"`
		} `json:"offerMappings"`
		Paging struct {
			NextPageToken string `json:"nextPageToken"`
		} `json:"paging"`
	} `json:"result"`
}

// fetchOfferNames 按 page_token 翻页拉取商品目录，得到 offerId -> 名称映射
// POST /businesses/{businessId}/offer-mappings
func (c *YandexClient) fetchOfferNames(ctx context.Context, acct model.Account) (map[string]string, error) {
	names := make(map[string]string)
	token := ""
	for {
		req := c.request(ctx, acct).
			SetPathParam("businessId", acct.BusinessID)
		if token != "" {
			req.SetQueryParam("page_token", token)
		}

		var res yandexMappingsResp
		resp, err := req.SetResult(&res).Post("/businesses/{businessId}/offer-mappings")
		if err != nil {
			return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", err)
		}
		if resp.IsError() {
			return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", statusErr(resp))
		}

		for _, m := range res.Result.OfferMappings {
			if m.Offer.OfferID != "" {
				names[m.Offer.OfferID] = m.Offer.Name
			}
		}

		token = res.Result.Paging.NextPageToken
		if token == "" {
			return names, nil
		}
	}
}

// withOfferNames 把商品名称以 offerName 字段写回库存记录的各 offer，
// 后续归一化按字段取值，不再关心名称来自哪个接口
func withOfferNames(raw json.RawMessage, names map[string]string) json.RawMessage {
	if len(names) == 0 {
		return raw
	}

	var rec map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	// UseNumber 保持 warehouseId 等数字字段原样，避免浮点改写
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return raw
	}
	offers, ok := rec["offers"].([]interface{})
	if !ok {
		return raw
	}

	for _, o := range offers {
		m, ok := o.(map[string]interface{})
		if !ok {
			continue
		}
		id, _ := m["offerId"].(string)
		if name, ok := names[id]; ok && name != "" {
			m["offerName"] = name
		}
	}

	out, err := json.Marshal(rec)
	if err != nil {
		return raw
	}
	return out
}

// fetchFBYWarehouses FBY 仓库 ID 集合
// GET /warehouses
func (c *YandexClient) fetchFBYWarehouses(ctx context.Context, acct model.Account) (map[string]struct{}, error) {
	var res yandexWarehousesResp
	resp, err := c.request(ctx, acct).
		SetResult(&res).
		Get("/warehouses")
	if err != nil {
		return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", err)
	}
	if resp.IsError() {
		return nil, wrapErr(model.MarketplaceYandex, acct, "stocks", statusErr(resp))
	}

	ids := make(map[string]struct{}, len(res.Result.Warehouses))
	for _, w := range res.Result.Warehouses {
		ids[w.ID.String()] = struct{}{}
	}
	return ids, nil
}
