package tenant

// tierLimits is the table-driven limit preset per tier, from spec.md §6.
var tierLimits = map[Tier]Limits{
	TierStarter: {
		MaxUsers: 5, MaxPages: 100, MaxStorageMB: 1000,
		MaxAPICalls: 10000, MaxFileSizeMB: 25,
	},
	TierProfessional: {
		MaxUsers: 25, MaxPages: 1000, MaxStorageMB: 5000,
		MaxAPICalls: 50000, MaxFileSizeMB: 100,
	},
	TierEnterprise: {
		MaxUsers: 100, MaxPages: 10000, MaxStorageMB: 20000,
		MaxAPICalls: 200000, MaxFileSizeMB: 500,
	},
}

// tierFeatures is the feature preset per tier: starter gets the baseline,
// professional adds branding/analytics/API access, enterprise adds the rest.
var tierFeatures = map[Tier]Features{
	TierStarter: {
		FileUpload: true, SSLEnabled: true,
	},
	TierProfessional: {
		FileUpload: true, SSLEnabled: true, CustomBranding: true,
		Analytics: true, APIAccess: true, MultiLanguage: true,
	},
	TierEnterprise: {
		FileUpload: true, SSLEnabled: true, CustomBranding: true,
		Analytics: true, APIAccess: true, MultiLanguage: true,
		AdvancedEditor: true, CustomDomain: true, Ecommerce: true, SocialLogin: true,
	},
}

// DefaultLimitsFor returns the limit preset for tier, falling back to
// starter for an unrecognized or empty tier.
func DefaultLimitsFor(tier Tier) Limits {
	if l, ok := tierLimits[tier]; ok {
		return l
	}
	return tierLimits[TierStarter]
}

// DefaultFeaturesFor returns the feature preset for tier, falling back to
// starter for an unrecognized or empty tier.
func DefaultFeaturesFor(tier Tier) Features {
	if f, ok := tierFeatures[tier]; ok {
		return f
	}
	return tierFeatures[TierStarter]
}
