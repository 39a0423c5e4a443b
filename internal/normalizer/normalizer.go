package normalizer

import (
	"encoding/json"
	"strconv"

	"mp_report_v1/internal/model"
)

// ==================== 归一化 ====================
//
// 把各平台的原始 JSON 记录映射为统一行结构。纯函数，无 I/O。
// 可选字段缺失时填零值；缺少必备标识字段（订单号 / SKU）的记录
// 以 RecordError 形式返回并丢弃，绝不影响同批次的其它记录。

// NormalizeOrders 原始订单记录 -> OrderRow
// 每行都带上账号的卖家标识与平台标签，保证合并后可追溯来源
func NormalizeOrders(acct model.Account, raw []json.RawMessage) ([]model.OrderRow, []error) {
	switch acct.Marketplace {
	case model.MarketplaceWB:
		return wbOrders(acct, raw)
	case model.MarketplaceOzon:
		return ozonOrders(acct, raw)
	case model.MarketplaceYandex:
		return yandexOrders(acct, raw)
	default:
		return nil, nil
	}
}

// NormalizeStocks 原始库存记录 -> StockRow
func NormalizeStocks(acct model.Account, raw []json.RawMessage) ([]model.StockRow, []error) {
	switch acct.Marketplace {
	case model.MarketplaceWB:
		return wbStocks(acct, raw)
	case model.MarketplaceOzon:
		return ozonStocks(acct, raw)
	case model.MarketplaceYandex:
		return yandexStocks(acct, raw)
	default:
		return nil, nil
	}
}

func recordErr(mp model.Marketplace, index int, field string) error {
	return &model.RecordError{Marketplace: mp, Index: index, Field: field}
}

// ==================== Wildberries ====================

type wbOrder struct {
	Date            string  `json:"date"`
	SupplierArticle string  `json:"supplierArticle"`
	Subject         string  `json:"subject"`
	PriceWithDisc   float64 `json:"priceWithDisc"`
	IsCancel        bool    `json:"isCancel"`
	Srid            string  `json:"srid"`
	GNumber         string  `json:"gNumber"`
}

func wbOrders(acct model.Account, raw []json.RawMessage) ([]model.OrderRow, []error) {
	var rows []model.OrderRow
	var errs []error
	for i, rec := range raw {
		var o wbOrder
		if err := json.Unmarshal(rec, &o); err != nil {
			errs = append(errs, recordErr(acct.Marketplace, i, "srid"))
			continue
		}

		orderID := o.Srid
		if orderID == "" {
			orderID = o.GNumber
		}
		if orderID == "" {
			errs = append(errs, recordErr(acct.Marketplace, i, "srid"))
			continue
		}

		status := "active"
		if o.IsCancel {
			status = "canceled"
		}
		rows = append(rows, model.OrderRow{
			OrderID:     orderID,
			Article:     o.SupplierArticle,
			Name:        o.Subject,
			Quantity:    1, // WB 订单接口一行即一件
			Price:       o.PriceWithDisc,
			Status:      status,
			Date:        o.Date,
			Seller:      acct.Label,
			Marketplace: acct.Marketplace,
		})
	}
	return rows, errs
}

type wbStock struct {
	SupplierArticle string `json:"supplierArticle"`
	Subject         string `json:"subject"`
	WarehouseName   string `json:"warehouseName"`
	Quantity        int    `json:"quantity"`
}

func wbStocks(acct model.Account, raw []json.RawMessage) ([]model.StockRow, []error) {
	var rows []model.StockRow
	var errs []error
	for i, rec := range raw {
		var s wbStock
		if err := json.Unmarshal(rec, &s); err != nil || s.SupplierArticle == "" {
			errs = append(errs, recordErr(acct.Marketplace, i, "supplierArticle"))
			continue
		}

		rows = append(rows, model.StockRow{
			Article:     s.SupplierArticle,
			Name:        s.Subject,
			Warehouse:   s.WarehouseName,
			Quantity:    s.Quantity,
			Seller:      acct.Label,
			Marketplace: acct.Marketplace,
		})
	}
	return rows, errs
}

// ==================== Ozon ====================

type ozonPosting struct {
	PostingNumber string `json:"posting_number"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`    // FBO
	InProcessAt   string `json:"in_process_at"` // FBS
	Products      []struct {
		Name     string      `json:"name"`
		OfferID  string      `json:"offer_id"`
		SKU      json.Number `json:"sku"`
		Price    string      `json:"price"`
		Quantity int         `json:"quantity"`
	} `json:"products"`
}

func ozonOrders(acct model.Account, raw []json.RawMessage) ([]model.OrderRow, []error) {
	var rows []model.OrderRow
	var errs []error
	for i, rec := range raw {
		var p ozonPosting
		if err := json.Unmarshal(rec, &p); err != nil || p.PostingNumber == "" {
			errs = append(errs, recordErr(acct.Marketplace, i, "posting_number"))
			continue
		}

		date := p.CreatedAt
		if date == "" {
			date = p.InProcessAt
		}
		for _, prod := range p.Products {
			article := prod.OfferID
			if article == "" {
				article = prod.SKU.String()
			}
			price, _ := strconv.ParseFloat(prod.Price, 64)
			rows = append(rows, model.OrderRow{
				OrderID:     p.PostingNumber,
				Article:     article,
				Name:        prod.Name,
				Quantity:    prod.Quantity,
				Price:       price,
				Status:      p.Status,
				Date:        date,
				Seller:      acct.Label,
				Marketplace: acct.Marketplace,
			})
		}
	}
	return rows, errs
}

type ozonStock struct {
	Name                string      `json:"name"`
	OfferID             string      `json:"offer_id"`
	SKU                 json.Number `json:"sku"`
	AvailableStockCount int         `json:"available_stock_count"`
	WarehouseName       string      `json:"warehouse_name"`
}

func ozonStocks(acct model.Account, raw []json.RawMessage) ([]model.StockRow, []error) {
	var rows []model.StockRow
	var errs []error
	for i, rec := range raw {
		var s ozonStock
		if err := json.Unmarshal(rec, &s); err != nil || s.SKU.String() == "" {
			errs = append(errs, recordErr(acct.Marketplace, i, "sku"))
			continue
		}

		article := s.OfferID
		if article == "" {
			article = s.SKU.String()
		}
		rows = append(rows, model.StockRow{
			Article:     article,
			Name:        s.Name,
			Warehouse:   s.WarehouseName,
			Quantity:    s.AvailableStockCount,
			Seller:      acct.Label,
			Marketplace: acct.Marketplace,
		})
	}
	return rows, errs
}

// ==================== Yandex Market ====================

type yandexOrder struct {
	ID           json.Number `json:"id"`
	Status       string      `json:"status"`
	CreationDate string      `json:"creationDate"`
	Items        []struct {
		OfferID   string  `json:"offerId"`
		OfferName string  `json:"offerName"`
		Price     float64 `json:"price"`
		Count     int     `json:"count"`
	} `json:"items"`
}

func yandexOrders(acct model.Account, raw []json.RawMessage) ([]model.OrderRow, []error) {
	var rows []model.OrderRow
	var errs []error
	for i, rec := range raw {
		var o yandexOrder
		if err := json.Unmarshal(rec, &o); err != nil || o.ID.String() == "" {
			errs = append(errs, recordErr(acct.Marketplace, i, "id"))
			continue
		}

		for _, item := range o.Items {
			rows = append(rows, model.OrderRow{
				OrderID:     o.ID.String(),
				Article:     item.OfferID,
				Name:        item.OfferName,
				Quantity:    item.Count,
				Price:       item.Price,
				Status:      o.Status,
				Date:        o.CreationDate,
				Seller:      acct.Label,
				Marketplace: acct.Marketplace,
			})
		}
	}
	return rows, errs
}

type yandexStockWarehouse struct {
	WarehouseID json.Number `json:"warehouseId"`
	Offers      []struct {
		OfferID   string `json:"offerId"`
		OfferName string `json:"offerName"` // 客户端从 offer-mappings 并入
		Stocks    []struct {
			Type  string `json:"type"`
			Count int    `json:"count"`
		} `json:"stocks"`
	} `json:"offers"`
}

func yandexStocks(acct model.Account, raw []json.RawMessage) ([]model.StockRow, []error) {
	var rows []model.StockRow
	var errs []error
	for i, rec := range raw {
		var wh yandexStockWarehouse
		if err := json.Unmarshal(rec, &wh); err != nil {
			errs = append(errs, recordErr(acct.Marketplace, i, "warehouseId"))
			continue
		}

		for _, offer := range wh.Offers {
			if offer.OfferID == "" {
				errs = append(errs, recordErr(acct.Marketplace, i, "offerId"))
				continue
			}
			// 在库数量取 AVAILABLE 类型的计数
			qty := 0
			for _, st := range offer.Stocks {
				if st.Type == "AVAILABLE" {
					qty += st.Count
				}
			}
			rows = append(rows, model.StockRow{
				Article:     offer.OfferID,
				Name:        offer.OfferName,
				Warehouse:   wh.WarehouseID.String(),
				Quantity:    qty,
				Seller:      acct.Label,
				Marketplace: acct.Marketplace,
			})
		}
	}
	return rows, errs
}
