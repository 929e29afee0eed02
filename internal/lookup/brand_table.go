package lookup

// Brand pairs a brand token with the canonical domain it legitimately lives
// on. A host that resembles the token but resolves to a different registrable
// domain is an impersonation candidate.
type Brand struct {
	Name   string
	Domain string
}

// Bundled reference table. Kept sorted by name so tie-breaking on lexical
// order is stable across builds.
var brandTable = []Brand{
	{"adobe", "adobe.com"},
	{"airbnb", "airbnb.com"},
	{"alipay", "alipay.com"},
	{"amazon", "amazon.com"},
	{"americanexpress", "americanexpress.com"},
	{"apple", "apple.com"},
	{"bankofamerica", "bankofamerica.com"},
	{"barclays", "barclays.co.uk"},
	{"binance", "binance.com"},
	{"bitpay", "bitpay.com"},
	{"booking", "booking.com"},
	{"chase", "chase.com"},
	{"citibank", "citibank.com"},
	{"coinbase", "coinbase.com"},
	{"costco", "costco.com"},
	{"dhl", "dhl.com"},
	{"discord", "discord.com"},
	{"docusign", "docusign.com"},
	{"dropbox", "dropbox.com"},
	{"ebay", "ebay.com"},
	{"facebook", "facebook.com"},
	{"fedex", "fedex.com"},
	{"github", "github.com"},
	{"gmail", "gmail.com"},
	{"google", "google.com"},
	{"hsbc", "hsbc.com"},
	{"icloud", "icloud.com"},
	{"instagram", "instagram.com"},
	{"interac", "interac.ca"},
	{"linkedin", "linkedin.com"},
	{"mastercard", "mastercard.com"},
	{"mcafee", "mcafee.com"},
	{"microsoft", "microsoft.com"},
	{"netflix", "netflix.com"},
	{"norton", "norton.com"},
	{"office365", "office.com"},
	{"onedrive", "onedrive.live.com"},
	{"outlook", "outlook.com"},
	{"paypal", "paypal.com"},
	{"paytm", "paytm.com"},
	{"revolut", "revolut.com"},
	{"roblox", "roblox.com"},
	{"santander", "santander.com"},
	{"shopify", "shopify.com"},
	{"skype", "skype.com"},
	{"snapchat", "snapchat.com"},
	{"spotify", "spotify.com"},
	{"steam", "steampowered.com"},
	{"stripe", "stripe.com"},
	{"telegram", "telegram.org"},
	{"tesco", "tesco.com"},
	{"tiktok", "tiktok.com"},
	{"twitter", "twitter.com"},
	{"ups", "ups.com"},
	{"usps", "usps.com"},
	{"venmo", "venmo.com"},
	{"visa", "visa.com"},
	{"walmart", "walmart.com"},
	{"wellsfargo", "wellsfargo.com"},
	{"westernunion", "westernunion.com"},
	{"whatsapp", "whatsapp.com"},
	{"wise", "wise.com"},
	{"yahoo", "yahoo.com"},
	{"zelle", "zellepay.com"},
	{"zoom", "zoom.us"},
}
