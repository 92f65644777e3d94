package security

// Client is an API client allowed to request tokens. Static registry for
// now; the storefront gateway and the admin console are the two callers.
type Client struct {
	Secret  string
	Perms   []string
	Enabled bool
}

var Clients = map[string]Client{
	"storefront-web": {
		Secret:  "storefront-secret",
		Perms:   []string{"orders.read", "orders.write"},
		Enabled: true,
	},
	"admin-console": {
		Secret:  "admin-secret",
		Perms:   []string{"orders.read", "orders.write", "orders.admin"},
		Enabled: true,
	},
}
