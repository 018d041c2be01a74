package method

// Type classifies the kind of payment instrument used for a transaction.
type Type string

const (
	TypeCreditCard     Type = "credit_card"
	TypeDebitCard      Type = "debit_card"
	TypeBankTransfer   Type = "bank_transfer"
	TypeDigitalWallet  Type = "digital_wallet"
	TypeCryptocurrency Type = "cryptocurrency"
	TypeCash           Type = "cash"
	TypeCheck          Type = "check"
	TypeOther          Type = "other"
)

// Label returns the human-readable name of the type.
func (t Type) Label() string {
	switch t {
	case TypeCreditCard:
		return "Credit Card"
	case TypeDebitCard:
		return "Debit Card"
	case TypeBankTransfer:
		return "Bank Transfer"
	case TypeDigitalWallet:
		return "Digital Wallet"
	case TypeCryptocurrency:
		return "Cryptocurrency"
	case TypeCash:
		return "Cash"
	case TypeCheck:
		return "Check"
	case TypeOther:
		return "Other"
	default:
		return string(t)
	}
}

// IsCard reports whether the type is a card payment.
func (t Type) IsCard() bool {
	return t == TypeCreditCard || t == TypeDebitCard
}

// IsValid reports whether t is one of the closed enumeration values.
func (t Type) IsValid() bool {
	switch t {
	case TypeCreditCard, TypeDebitCard, TypeBankTransfer, TypeDigitalWallet,
		TypeCryptocurrency, TypeCash, TypeCheck, TypeOther:
		return true
	}
	return false
}
