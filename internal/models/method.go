package models

// Method is how money enters or leaves the balance.
type Method string

const (
	MethodNone    Method = ""
	MethodBank    Method = "bank"
	MethodEWallet Method = "ewallet"
	MethodCard    Method = "card"
)

// Provider is a bank or e-wallet the user can pick for a method.
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var providers = map[Method][]Provider{
	MethodBank: {
		{ID: "bca", Name: "Bank BCA"},
		{ID: "mandiri", Name: "Bank Mandiri"},
		{ID: "bni", Name: "Bank BNI"},
	},
	MethodEWallet: {
		{ID: "ovo", Name: "OVO"},
		{ID: "gopay", Name: "GoPay"},
		{ID: "dana", Name: "DANA"},
	},
}

// Providers lists the providers offered for m. Card has none.
func Providers(m Method) []Provider {
	return append([]Provider(nil), providers[m]...)
}

// ProviderByID finds a provider of method m.
func ProviderByID(m Method, id string) (Provider, bool) {
	for _, p := range providers[m] {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// Label is the human name of the method.
func (m Method) Label() string {
	switch m {
	case MethodBank:
		return "Bank transfer"
	case MethodEWallet:
		return "E-wallet"
	case MethodCard:
		return "Card"
	default:
		return "None"
	}
}

// ParseMethod accepts the identifiers used on the wire and in the CLI.
func ParseMethod(s string) (Method, bool) {
	switch s {
	case "bank", "bank_transfer":
		return MethodBank, true
	case "ewallet", "e_wallet", "e-wallet":
		return MethodEWallet, true
	case "card":
		return MethodCard, true
	}
	return MethodNone, false
}
