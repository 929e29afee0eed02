package lookup

// Bundled denylist of known-bad domains, shipped with the binary and loaded
// once at startup. Entries are already normalized (lowercase, no www).
var defaultDenylist = []string{
	"account-verify-support.top",
	"amaz0n-tracking.ml",
	"app1e-id-locked.xyz",
	"appleid-unlock.gq",
	"bank-alert-secure.cf",
	"billing-update-center.icu",
	"chase-secure-alerts.top",
	"coinbase-wallet-sync.icu",
	"crypto-claim-bonus.buzz",
	"customs-fee-payment.ml",
	"delivery-reschedule.cf",
	"dhl-parcel-fee.gq",
	"docusign-review-doc.top",
	"facebook-security-check.ml",
	"fedex-redelivery.tk",
	"free-giftcard-now.tk",
	"gmail-storage-full.icu",
	"icloud-find-device.cf",
	"instagram-verify-badge.xyz",
	"interac-refund-portal.top",
	"irs-tax-refund-claim.ml",
	"login-micros0ft.gq",
	"mcafee-renewal-notice.click",
	"meta-business-appeal.icu",
	"netflix-payment-update.xyz",
	"norton-invoice-billing.top",
	"office365-password-reset.ml",
	"parcel-tracking-fee.gdn",
	"pay-pal-limited.tk",
	"paypa1-secure-login.tk",
	"paypal-resolution-center.ga",
	"prize-winner-claim.win",
	"qr-menu-payment.icu",
	"qr-parking-fine.top",
	"revolut-card-frozen.cf",
	"secure-wellsfargo-login.gq",
	"sms-toll-road-pay.xyz",
	"steam-gift-activation.ml",
	"support-whatsapp-verify.tk",
	"telegram-premium-free.icu",
	"usps-package-hold.top",
	"venmo-account-review.ga",
	"wallet-connect-sync.click",
	"wire-transfer-confirm.cf",
	"your-package-waiting.loan",
}
