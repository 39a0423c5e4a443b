package model

// ==================== 平台与数据类型 ====================

// Marketplace 电商平台标识
type Marketplace string

const (
	MarketplaceWB     Marketplace = "WB"
	MarketplaceOzon   Marketplace = "OZON"
	MarketplaceYandex Marketplace = "YANDEX"
)

// AllMarketplaces 按固定顺序返回全部平台
// 报表 Sheet 顺序、聚合遍历顺序都以此为准
func AllMarketplaces() []Marketplace {
	return []Marketplace{MarketplaceWB, MarketplaceOzon, MarketplaceYandex}
}

// Kind 数据种类（订单 / 库存）
type Kind string

const (
	KindOrders Kind = "orders"
	KindStocks Kind = "stocks"
)

// AllKinds 按固定顺序返回全部数据种类
func AllKinds() []Kind {
	return []Kind{KindOrders, KindStocks}
}

// SheetName 返回 (平台, 种类) 对应的 Sheet 名
// 例如 WB_orders / OZON_stocks
func SheetName(mp Marketplace, kind Kind) string {
	return string(mp) + "_" + string(kind)
}
