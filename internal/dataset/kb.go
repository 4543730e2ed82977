package dataset

// knowledgeBase maps every category to its documented guidance. The "other"
// entry doubles as the fallback set for anything the router cannot place.
var knowledgeBase = map[Category][]string{
	CategoryUploadErrors: {
		"404 errors usually mean the upload URL or path is incorrect. Verify the endpoint and trailing slashes.",
		"Ensure the file size is under 100MB; larger files require chunked uploads.",
		"Clear CDN or browser cache after redeploying static assets to avoid stale 404s.",
		"Uploads must use HTTPS; mixed content (HTTP) can be blocked by the browser.",
	},
	CategoryAccountAccess: {
		"Password resets expire after 15 minutes; resend if the link has lapsed.",
		"Two-factor authentication codes can drift. Sync device time and retry.",
		"Admins can unlock accounts from the Security > Sessions page.",
		"SSO users must initiate login from the company portal, not the direct login form.",
	},
	CategoryDataExport: {
		"Exports are queued; large exports may take up to 15 minutes to generate.",
		"CSV exports are limited to 1M rows. Use JSON for larger datasets.",
		"Check the Exports page for status and download links; links expire after 24 hours.",
		"If an export fails, retry after reducing filters or date range.",
	},
	CategoryOther: {
		"For issues outside documented categories, collect logs and timestamps before escalation.",
		"Share browser, OS, and app version to speed up troubleshooting.",
		"Check status page for ongoing incidents before deep-diving.",
	},
}

// routingRules in priority order. Ambiguous terms like "download" and
// "cache" are kept out of every table on purpose: tickets that only use
// those words are meant to fall through to "other".
var routingRules = []KeywordRule{
	{Category: CategoryUploadErrors, Terms: []string{"404", "upload", "error"}},
	{Category: CategoryAccountAccess, Terms: []string{"sso", "login", "password", "access", "2fa", "locked"}},
	{Category: CategoryDataExport, Terms: []string{"export", "csv", "report"}},
}

// KnowledgeBase returns a fresh copy of the category to docs mapping.
func KnowledgeBase() map[Category][]string {
	out := make(map[Category][]string, len(knowledgeBase))
	for cat, docs := range knowledgeBase {
		out[cat] = append([]string(nil), docs...)
	}
	return out
}

// RoutingRules returns a fresh copy of the keyword tables in priority order.
func RoutingRules() []KeywordRule {
	out := make([]KeywordRule, 0, len(routingRules))
	for _, r := range routingRules {
		out = append(out, KeywordRule{
			Category: r.Category,
			Terms:    append([]string(nil), r.Terms...),
		})
	}
	return out
}
