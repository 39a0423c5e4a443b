package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"mp_report_v1/internal/model"
)

// ==================== 平台客户端接口 ====================

// Client 单平台拉取能力
// 三个平台各自实现，平台差异（鉴权头、分页方式）全部封装在实现内部，
// 聚合层不出现任何平台分支
type Client interface {
	Marketplace() model.Marketplace

	// FetchOrders 拉取一个账号在报表周期内的全部订单原始记录
	FetchOrders(ctx context.Context, acct model.Account) ([]json.RawMessage, error)

	// FetchStocks 拉取一个账号的全部库存原始记录
	FetchStocks(ctx context.Context, acct model.Account) ([]json.RawMessage, error)
}

// Options 客户端公共配置
type Options struct {
	BaseURL string
	// Timeout 单次 HTTP 调用超时，必须设置以约束整个请求的总时长
	Timeout time.Duration
	// RetryCount 对 429 / 5xx 追加的重试次数，固定间隔
	RetryCount int
	// RetryWaitTime 重试的固定间隔，零值取 defaultRetryWait
	RetryWaitTime time.Duration
	// Now 可注入时钟，测试时固定报表周期
	Now func() time.Time
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

const defaultRetryWait = 2 * time.Second

// newHTTPClient 构建统一的 resty 客户端
func newHTTPClient(o Options) *resty.Client {
	c := resty.New().
		SetBaseURL(o.BaseURL).
		SetTimeout(o.Timeout).
		SetHeader("User-Agent", "MP-Report/1.0")

	if o.RetryCount > 0 {
		wait := o.RetryWaitTime
		if wait <= 0 {
			wait = defaultRetryWait
		}
		c.SetRetryCount(o.RetryCount).
			// 固定等待，不做指数退避
			SetRetryWaitTime(wait).
			SetRetryMaxWaitTime(wait).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if r == nil {
					return false
				}
				return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
			})
	}
	return c
}

// ==================== 公共辅助 ====================

// reportWeek 返回上一个完整周 [上周一 00:00, 本周一 00:00)
// 与订单接口的默认取数窗口保持一致
func reportWeek(now time.Time) (time.Time, time.Time) {
	wd := (int(now.Weekday()) + 6) % 7 // 周一 = 0
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	from := day.AddDate(0, 0, -(wd + 7))
	return from, from.AddDate(0, 0, 7)
}

// wrapErr 统一包装为 MarketplaceError，保留平台 / 账号 / 操作维度
func wrapErr(mp model.Marketplace, acct model.Account, op string, err error) error {
	return &model.MarketplaceError{
		Marketplace: mp,
		Account:     acct.Label,
		Op:          op,
		Err:         err,
	}
}

// statusErr 非 2xx 响应转为错误
func statusErr(resp *resty.Response) error {
	return fmt.Errorf("状态码 %d: %s", resp.StatusCode(), resp.String())
}
