package model

import "fmt"

// ==================== 错误分类 ====================
//
// 传播策略:
//   - MarketplaceError / RecordError 在账号、记录粒度被捕获，降级为 Warning
//   - AggregateError / RenderError 上抛到 HTTP 层

// ConfigError 某平台没有任何可用账号
type ConfigError struct {
	Marketplace Marketplace
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: 未配置任何可用账号", e.Marketplace)
}

// MarketplaceError 单账号单操作的网络 / API 失败
type MarketplaceError struct {
	Marketplace Marketplace
	Account     string
	Op          string
	Err         error
}

func (e *MarketplaceError) Error() string {
	return fmt.Sprintf("%s [PA %s] %s: %v", e.Marketplace, e.Account, e.Op, e.Err)
}

func (e *MarketplaceError) Unwrap() error { return e.Err }

// RecordError 单条原始记录缺失必备标识字段
type RecordError struct {
	Marketplace Marketplace
	Index       int
	Field       string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: 第 %d 条记录缺少必备字段 %s，已丢弃", e.Marketplace, e.Index, e.Field)
}

// AggregateError 全部数据源失败，整次聚合无任何结果
type AggregateError struct {
	Warnings []Warning
}

func (e *AggregateError) Error() string {
	return fmt.Sprintf("所有平台全部拉取失败 (%d 个失败项)", len(e.Warnings))
}

// RenderError 报表序列化失败
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("报表生成失败: %v", e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
