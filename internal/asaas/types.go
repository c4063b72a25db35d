package asaas

// Provider resource shapes. Dates travel as the provider sends them
// ("2006-01-02" strings); parsing happens at the persistence boundary.

type Customer struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	MobilePhone       string `json:"mobilePhone"`
	CpfCnpj           string `json:"cpfCnpj"`
	PostalCode        string `json:"postalCode"`
	Address           string `json:"address"`
	AddressNumber     string `json:"addressNumber"`
	Province          string `json:"province"`
	City              string `json:"city"`
	State             string `json:"state"`
	ExternalReference string `json:"externalReference"`
	Deleted           bool   `json:"deleted"`
}

type CustomerRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email,omitempty"`
	Phone             string `json:"phone,omitempty"`
	MobilePhone       string `json:"mobilePhone,omitempty"`
	CpfCnpj           string `json:"cpfCnpj"`
	PostalCode        string `json:"postalCode,omitempty"`
	Address           string `json:"address,omitempty"`
	AddressNumber     string `json:"addressNumber,omitempty"`
	Province          string `json:"province,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
	ExternalReference string `json:"externalReference,omitempty"`
}

// SplitEntry is one wallet's share of a charge. Exactly one of
// PercentualValue or FixedValue is set.
type SplitEntry struct {
	WalletID        string  `json:"walletId"`
	PercentualValue float64 `json:"percentualValue,omitempty"`
	FixedValue      float64 `json:"fixedValue,omitempty"`
}

type Payment struct {
	ID                string       `json:"id"`
	Customer          string       `json:"customer"`
	Subscription      string       `json:"subscription,omitempty"`
	Value             float64      `json:"value"`
	NetValue          float64      `json:"netValue"`
	DueDate           string       `json:"dueDate"`
	PaymentDate       string       `json:"paymentDate,omitempty"`
	Status            string       `json:"status"`
	BillingType       string       `json:"billingType"`
	ExternalReference string       `json:"externalReference"`
	InvoiceURL        string       `json:"invoiceUrl"`
	Anticipated       bool         `json:"anticipated"`
	Anticipable       bool         `json:"anticipable"`
	Deleted           bool         `json:"deleted"`
	Split             []SplitEntry `json:"split,omitempty"`
}

type PaymentRequest struct {
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             float64      `json:"value"`
	DueDate           string       `json:"dueDate"`
	Description       string       `json:"description,omitempty"`
	ExternalReference string       `json:"externalReference,omitempty"`
	Split             []SplitEntry `json:"split,omitempty"`
}

type Subscription struct {
	ID                string       `json:"id"`
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             float64      `json:"value"`
	Cycle             string       `json:"cycle"`
	NextDueDate       string       `json:"nextDueDate"`
	Status            string       `json:"status"`
	ExternalReference string       `json:"externalReference"`
	Deleted           bool         `json:"deleted"`
	Split             []SplitEntry `json:"split,omitempty"`
}

type SubscriptionRequest struct {
	Customer          string       `json:"customer"`
	BillingType       string       `json:"billingType"`
	Value             float64      `json:"value"`
	NextDueDate       string       `json:"nextDueDate"`
	Cycle             string       `json:"cycle"`
	Description       string       `json:"description,omitempty"`
	ExternalReference string       `json:"externalReference,omitempty"`
	Split             []SplitEntry `json:"split,omitempty"`
}

// CardTokenRequest carries raw card data to the provider's tokenizer. The
// raw number and CCV exist only in flight; nothing here is persisted.
type CardTokenRequest struct {
	Customer   string          `json:"customer"`
	CreditCard CreditCard      `json:"creditCard"`
	HolderInfo *CardHolderInfo `json:"creditCardHolderInfo,omitempty"`
	RemoteIP   string          `json:"remoteIp,omitempty"`
}

type CreditCard struct {
	HolderName  string `json:"holderName"`
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiryMonth"`
	ExpiryYear  string `json:"expiryYear"`
	CCV         string `json:"ccv"`
}

type CardHolderInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	CpfCnpj       string `json:"cpfCnpj"`
	PostalCode    string `json:"postalCode"`
	AddressNumber string `json:"addressNumber"`
	Phone         string `json:"phone"`
}

// CardToken is the only card material callers may keep: the opaque token
// plus non-sensitive echo fields.
type CardToken struct {
	Token string `json:"creditCardToken"`
	Brand string `json:"creditCardBrand"`
	Last4 string `json:"creditCardNumber"`
}

// page is the provider's list envelope; lists paginate with offset/limit
// until HasMore is false.
type page[T any] struct {
	HasMore    bool `json:"hasMore"`
	TotalCount int  `json:"totalCount"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Data       []T  `json:"data"`
}
