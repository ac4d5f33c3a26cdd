package models

// Payment types
const (
	PaymentCash    = "Cash"
	PaymentFinance = "Finance"
)

const CustomerActive = "Active"

// CustomerNumericFields are coerced on every customer write.
var CustomerNumericFields = []string{
	"agreedPrice", "bosAmount", "totalPrice",
	"advanceAmount", "secondPayment", "thirdPayment", "finalPayment",
	"advanceReceivedAmount", "finalAmount",
}

type Customer struct {
	Meta        `mapstructure:",squash"`
	Name        string  `mapstructure:"name" json:"name"`
	Phone       string  `mapstructure:"phone" json:"phone"`
	Address     string  `mapstructure:"address" json:"address"`
	KWRequired  string  `mapstructure:"kwRequired" json:"kwRequired"`
	PaymentType string  `mapstructure:"paymentType" json:"paymentType"`
	BankName    string  `mapstructure:"bankName" json:"bankName"`
	AgreedPrice float64 `mapstructure:"agreedPrice" json:"agreedPrice"`
	BOSAmount   float64 `mapstructure:"bosAmount" json:"bosAmount"`
	TotalPrice  float64 `mapstructure:"totalPrice" json:"totalPrice"`

	AdvanceAmount float64 `mapstructure:"advanceAmount" json:"advanceAmount"`
	SecondPayment float64 `mapstructure:"secondPayment" json:"secondPayment"`
	ThirdPayment  float64 `mapstructure:"thirdPayment" json:"thirdPayment"`
	FinalPayment  float64 `mapstructure:"finalPayment" json:"finalPayment"`

	// Finance customers record the lender's disbursement separately.
	AdvanceReceivedAmount float64 `mapstructure:"advanceReceivedAmount" json:"advanceReceivedAmount"`
	FinalAmount           float64 `mapstructure:"finalAmount" json:"finalAmount"`

	Status string `mapstructure:"status" json:"status"`
}
