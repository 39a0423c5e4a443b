package model

// ==================== 卖家账号 ====================

// Account 单个卖家在某平台上的凭证集
// 进程启动时从配置加载一次，之后只读
type Account struct {
	Marketplace Marketplace
	// Label 卖家标识 (PA)，用于在汇总表中追溯行来源
	Label string
	// APIKey 三个平台都需要
	APIKey string
	// ClientID Ozon 专用
	ClientID string
	// CampaignID / BusinessID Yandex 专用
	CampaignID string
	BusinessID string
}

// Valid 校验该账号是否具备其平台要求的全部凭证
func (a Account) Valid() bool {
	if a.Label == "" || a.APIKey == "" {
		return false
	}
	switch a.Marketplace {
	case MarketplaceWB:
		return true
	case MarketplaceOzon:
		return a.ClientID != ""
	case MarketplaceYandex:
		return a.CampaignID != "" && a.BusinessID != ""
	default:
		return false
	}
}
