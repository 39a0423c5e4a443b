package registry

import (
	"go.uber.org/zap"

	"mp_report_v1/internal/config"
	"mp_report_v1/internal/model"
)

// ==================== 凭证注册表 ====================

// Registry 按平台维护卖家账号凭证
// 构建后只读，可被所有并发拉取任务安全共享
type Registry struct {
	accounts map[model.Marketplace][]model.Account
}

// New 从配置构建注册表
// 凭证不完整的账号在此处剔除（只影响该账号，不影响整个平台）
func New(cfg *config.Config, log *zap.Logger) *Registry {
	r := &Registry{
		accounts: make(map[model.Marketplace][]model.Account, 3),
	}

	for _, a := range cfg.WB.Accounts {
		r.add(model.Account{
			Marketplace: model.MarketplaceWB,
			Label:       a.PA,
			APIKey:      a.APIKey,
		}, log)
	}
	for _, a := range cfg.Ozon.Accounts {
		r.add(model.Account{
			Marketplace: model.MarketplaceOzon,
			Label:       a.PA,
			APIKey:      a.APIKey,
			ClientID:    a.ClientID,
		}, log)
	}
	for _, a := range cfg.Yandex.Accounts {
		r.add(model.Account{
			Marketplace: model.MarketplaceYandex,
			Label:       a.PA,
			APIKey:      a.APIKey,
			CampaignID:  a.CampaignID,
			BusinessID:  a.BusinessID,
		}, log)
	}

	return r
}

func (r *Registry) add(acct model.Account, log *zap.Logger) {
	if !acct.Valid() {
		log.Warn("账号凭证不完整，已跳过",
			zap.String("marketplace", string(acct.Marketplace)),
			zap.String("pa", acct.Label))
		return
	}
	r.accounts[acct.Marketplace] = append(r.accounts[acct.Marketplace], acct)
}

// AccountsFor 返回某平台的账号列表（保持配置中的顺序）
// 平台无任何可用账号时返回 ConfigError，调用方应将该平台的表视为空表
func (r *Registry) AccountsFor(mp model.Marketplace) ([]model.Account, error) {
	accts := r.accounts[mp]
	if len(accts) == 0 {
		return nil, &model.ConfigError{Marketplace: mp}
	}
	return accts, nil
}

// Empty 所有平台都没有可用账号
func (r *Registry) Empty() bool {
	for _, mp := range model.AllMarketplaces() {
		if len(r.accounts[mp]) > 0 {
			return false
		}
	}
	return true
}
