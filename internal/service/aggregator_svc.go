package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mp_report_v1/internal/marketplace"
	"mp_report_v1/internal/model"
	"mp_report_v1/internal/normalizer"
)

// ==================== 聚合服务 ====================

// AccountRegistry 账号枚举能力（registry.Registry 实现）
type AccountRegistry interface {
	AccountsFor(mp model.Marketplace) ([]model.Account, error)
}

// AggregatorService 多平台多账号聚合管线
//
// 一次 BuildReport 的流程:
//  1. 从注册表枚举各平台账号
//  2. 对 (账号 × 订单/库存) 并发拉取，受并发上限约束
//  3. 每个结果独立归一化；账号级失败降级为告警，不中断其它任务
//  4. 按 (平台, 种类) 合并，保留单账号内的拉取顺序
//  5. 仅当所有数据源全部失败时返回 AggregateError
type AggregatorService struct {
	registry AccountRegistry
	clients  map[model.Marketplace]marketplace.Client
	limit    int
	log      *zap.Logger
}

// NewAggregatorService 创建聚合服务
// limit <= 0 时退化为串行
func NewAggregatorService(reg AccountRegistry, clients []marketplace.Client, limit int, log *zap.Logger) *AggregatorService {
	if limit <= 0 {
		limit = 1
	}
	m := make(map[model.Marketplace]marketplace.Client, len(clients))
	for _, c := range clients {
		m[c.Marketplace()] = c
	}
	return &AggregatorService{
		registry: reg,
		clients:  m,
		limit:    limit,
		log:      log,
	}
}

// fetchJob 一个 (账号, 种类) 拉取任务
type fetchJob struct {
	acct model.Account
	kind model.Kind
}

// BuildReport 执行一次全量聚合
// ctx 与入站 HTTP 请求生命周期绑定，调用方断开时在途任务随之终止
func (s *AggregatorService) BuildReport(ctx context.Context) (*model.Report, error) {
	var jobs []fetchJob
	var warnings []model.Warning

	for _, mp := range model.AllMarketplaces() {
		accts, err := s.registry.AccountsFor(mp)
		if err != nil {
			// 平台无账号：对应的表保持空表，不作为致命错误
			warnings = append(warnings, model.Warning{
				Marketplace: mp,
				Message:     err.Error(),
			})
			s.log.Warn("平台无可用账号", zap.String("marketplace", string(mp)))
			continue
		}
		for _, acct := range accts {
			for _, kind := range model.AllKinds() {
				jobs = append(jobs, fetchJob{acct: acct, kind: kind})
			}
		}
	}

	// 各任务写各自的下标位，合并点之前无共享可变状态
	orderResults := make([][]model.OrderRow, len(jobs))
	stockResults := make([][]model.StockRow, len(jobs))
	jobWarnings := make([][]model.Warning, len(jobs))
	succeeded := make([]bool, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i, j := range jobs {
		g.Go(func() error {
			// 调用方已断开时放弃后续工作
			if err := gctx.Err(); err != nil {
				return err
			}
			orderResults[i], stockResults[i], jobWarnings[i], succeeded[i] = s.runJob(gctx, j)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// ==================== 合并 ====================

	rep := model.NewReport()
	okCount := 0
	for i, j := range jobs {
		if succeeded[i] {
			okCount++
		}
		warnings = append(warnings, jobWarnings[i]...)
		switch j.kind {
		case model.KindOrders:
			rep.Orders[j.acct.Marketplace] = append(rep.Orders[j.acct.Marketplace], orderResults[i]...)
		case model.KindStocks:
			rep.Stocks[j.acct.Marketplace] = append(rep.Stocks[j.acct.Marketplace], stockResults[i]...)
		}
	}
	rep.Warnings = warnings

	if okCount == 0 {
		return nil, &model.AggregateError{Warnings: warnings}
	}

	s.log.Info("聚合完成",
		zap.Int("jobs", len(jobs)),
		zap.Int("ok", okCount),
		zap.Int("warnings", len(warnings)))
	return rep, nil
}

// runJob 执行单个拉取任务：拉取 -> 归一化
// 任何失败都转为告警返回，绝不向上抛错中断兄弟任务
func (s *AggregatorService) runJob(ctx context.Context, j fetchJob) ([]model.OrderRow, []model.StockRow, []model.Warning, bool) {
	client, ok := s.clients[j.acct.Marketplace]
	if !ok {
		return nil, nil, []model.Warning{{
			Marketplace: j.acct.Marketplace,
			Account:     j.acct.Label,
			Op:          string(j.kind),
			Message:     "未注册该平台的客户端",
		}}, false
	}

	var warnings []model.Warning
	switch j.kind {
	case model.KindOrders:
		raw, err := client.FetchOrders(ctx, j.acct)
		if err != nil {
			return nil, nil, []model.Warning{s.warnFetch(j, err)}, false
		}
		rows, recErrs := normalizer.NormalizeOrders(j.acct, raw)
		warnings = s.warnRecords(j, recErrs)
		return rows, nil, warnings, true

	case model.KindStocks:
		raw, err := client.FetchStocks(ctx, j.acct)
		if err != nil {
			return nil, nil, []model.Warning{s.warnFetch(j, err)}, false
		}
		rows, recErrs := normalizer.NormalizeStocks(j.acct, raw)
		warnings = s.warnRecords(j, recErrs)
		return nil, rows, warnings, true
	}
	return nil, nil, nil, false
}

// warnFetch 账号级拉取失败 -> 告警
func (s *AggregatorService) warnFetch(j fetchJob, err error) model.Warning {
	var mpErr *model.MarketplaceError
	msg := err.Error()
	if errors.As(err, &mpErr) {
		msg = mpErr.Err.Error()
	}
	s.log.Warn("账号拉取失败",
		zap.String("marketplace", string(j.acct.Marketplace)),
		zap.String("pa", j.acct.Label),
		zap.String("op", string(j.kind)),
		zap.Error(err))
	return model.Warning{
		Marketplace: j.acct.Marketplace,
		Account:     j.acct.Label,
		Op:          string(j.kind),
		Message:     msg,
	}
}

// warnRecords 记录级丢弃 -> 告警
func (s *AggregatorService) warnRecords(j fetchJob, recErrs []error) []model.Warning {
	if len(recErrs) == 0 {
		return nil
	}
	warnings := make([]model.Warning, 0, len(recErrs))
	for _, err := range recErrs {
		s.log.Warn("记录已丢弃",
			zap.String("marketplace", string(j.acct.Marketplace)),
			zap.String("pa", j.acct.Label),
			zap.String("op", string(j.kind)),
			zap.Error(err))
		warnings = append(warnings, model.Warning{
			Marketplace: j.acct.Marketplace,
			Account:     j.acct.Label,
			Op:          string(j.kind),
			Message:     err.Error(),
		})
	}
	return warnings
}
