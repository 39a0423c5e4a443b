package model

// ==================== 报表行 ====================

// OrderRow 订单行（跨平台统一结构）
// Seller 与 Marketplace 在任何情况下都不允许为空
type OrderRow struct {
	OrderID     string
	Article     string
	Name        string
	Quantity    int
	Price       float64
	Status      string
	Date        string
	Seller      string
	Marketplace Marketplace
}

// StockRow 库存行（跨平台统一结构）
type StockRow struct {
	Article     string
	Name        string
	Warehouse   string
	Quantity    int
	Seller      string
	Marketplace Marketplace
}

// OrderHeaders 订单 Sheet 的固定列顺序
func OrderHeaders() []string {
	return []string{"order_id", "article", "name", "quantity", "price", "status", "date", "PA", "marketplace"}
}

// StockHeaders 库存 Sheet 的固定列顺序
func StockHeaders() []string {
	return []string{"article", "name", "warehouse", "quantity", "PA", "marketplace"}
}

// Cells 按 OrderHeaders 顺序展开为单元格值
func (r OrderRow) Cells() []interface{} {
	return []interface{}{r.OrderID, r.Article, r.Name, r.Quantity, r.Price, r.Status, r.Date, r.Seller, string(r.Marketplace)}
}

// Cells 按 StockHeaders 顺序展开为单元格值
func (r StockRow) Cells() []interface{} {
	return []interface{}{r.Article, r.Name, r.Warehouse, r.Quantity, r.Seller, string(r.Marketplace)}
}

// ==================== 汇总结果 ====================

// Warning 局部失败告警（单账号 / 单条记录级别）
type Warning struct {
	Marketplace Marketplace
	Account     string
	Op          string
	Message     string
}

// Report 一次全量聚合的结果
// 每次请求新建，响应发出后即丢弃，不做任何跨请求缓存
type Report struct {
	Orders   map[Marketplace][]OrderRow
	Stocks   map[Marketplace][]StockRow
	Warnings []Warning
}

// NewReport 创建空结果集（六张表的键位全部就绪）
func NewReport() *Report {
	rep := &Report{
		Orders: make(map[Marketplace][]OrderRow, 3),
		Stocks: make(map[Marketplace][]StockRow, 3),
	}
	for _, mp := range AllMarketplaces() {
		rep.Orders[mp] = nil
		rep.Stocks[mp] = nil
	}
	return rep
}
