package dataset

// The ten mock tickets follow a demo narrative: clear successes up front,
// two deliberately ambiguous tickets (#3 and #8) that the keyword router
// cannot place, and successes to close.
var mockTickets = []Ticket{
	{ID: "1", Customer: "Alice Martinez", Issue: "I'm getting a 404 error when I try to upload files through the dashboard."},
	{ID: "2", Customer: "Ben Chen", Issue: "I can't log into my account because the SSO redirect keeps looping back to the login page."},
	{ID: "3", Customer: "Cara Johnson", Issue: "My download isn't working and I've been waiting for 20 minutes."},
	{ID: "4", Customer: "Diego Ramirez", Issue: "The password reset email expired before I could use it and now I'm locked out."},
	{ID: "5", Customer: "Ella Thompson", Issue: "File uploads fail in Safari but work fine in Chrome. Is this a known browser issue?"},
	{ID: "6", Customer: "Farah Patel", Issue: "I need to export more than a million records but the CSV format has a row limit. Can you help?"},
	{ID: "7", Customer: "Gina Williams", Issue: "My account is locked after too many failed 2FA attempts. How do I unlock it?"},
	{ID: "8", Customer: "Hank Davis", Issue: "The system shows stale files even after I refreshed. Cache issue maybe?"},
	{ID: "9", Customer: "Ivan Sokolov", Issue: "The export download link says it expired and I can't retrieve my data anymore."},
	{ID: "10", Customer: "Judy Anderson", Issue: "My browser blocks the file upload saying 'mixed content'. What does that mean?"},
}

var groundTruth = map[string]GroundTruth{
	"1": {
		Category:   CategoryUploadErrors,
		Keywords:   []string{"404", "endpoint", "url", "path"},
		WantsSteps: true,
	},
	"2": {
		Category:   CategoryAccountAccess,
		Keywords:   []string{"sso", "redirect", "identity provider", "saml"},
		WantsSteps: true,
	},
	// #3 says "download" which no keyword table claims, so the router
	// lands on "other" instead of data_export.
	"3": {
		Category:   CategoryDataExport,
		Keywords:   []string{"queue", "status", "processing"},
		WantsSteps: true,
	},
	"4": {
		Category:   CategoryAccountAccess,
		Keywords:   []string{"password", "reset", "link", "email"},
		WantsSteps: true,
	},
	"5": {
		Category:   CategoryUploadErrors,
		Keywords:   []string{"browser", "safari", "https", "compatibility", "ssl"},
		WantsSteps: true,
	},
	"6": {
		Category:   CategoryDataExport,
		Keywords:   []string{"json", "csv", "limit", "format"},
		WantsSteps: true,
	},
	"7": {
		Category:   CategoryAccountAccess,
		Keywords:   []string{"2fa", "locked", "unlock", "administrator"},
		WantsSteps: true,
	},
	// #8 is the second designed failure: "cache" and "stale" route nowhere.
	"8": {
		Category:   CategoryUploadErrors,
		Keywords:   []string{"cdn", "cache", "purge", "cloudflare"},
		WantsSteps: true,
	},
	"9": {
		Category:   CategoryDataExport,
		Keywords:   []string{"expired", "download", "regenerate", "24 hours"},
		WantsSteps: true,
	},
	"10": {
		Category:   CategoryUploadErrors,
		Keywords:   []string{"https", "mixed content", "ssl", "security"},
		WantsSteps: true,
	},
}
