// Package fees содержит модель платежей студента.
// Данные статические: у портала нет платёжного шлюза.
package fees

// FeeItem - статья оплаты за семестр.
type FeeItem struct {
	Head        string `json:"head"`
	ToPay       int    `json:"toPay"`
	Paid        int    `json:"paid"`
	InProcess   int    `json:"inProcess"`
	Outstanding int    `json:"outstanding"`
	DueDate     string `json:"dueDate"` // DD-MM-YYYY
}

// IsSettled возвращает true, если по статье нет долга.
func (f FeeItem) IsSettled() bool {
	return f.Outstanding == 0
}

// Transaction - проведённый платёж.
type Transaction struct {
	Date     string `json:"date"`
	Year     string `json:"year"`
	Semester int    `json:"sem"`
	Mode     string `json:"mode"`
	Amount   int    `json:"amount"`
	Status   string `json:"status"`
	TxnID    string `json:"txnId"`
}

// Statement - сводка по оплате.
type Statement struct {
	Summary          []FeeItem     `json:"summary"`
	Transactions     []Transaction `json:"transactions"`
	TotalToPay       int           `json:"totalToPay"`
	TotalPaid        int           `json:"totalPaid"`
	TotalOutstanding int           `json:"totalOutstanding"`
}

// HasOutstanding возвращает true, если есть неоплаченные статьи.
func (s Statement) HasOutstanding() bool {
	return s.TotalOutstanding > 0
}

// NewStatement считает итоги по статьям.
func NewStatement(items []FeeItem, txns []Transaction) Statement {
	st := Statement{Summary: items, Transactions: txns}
	for _, it := range items {
		st.TotalToPay += it.ToPay
		st.TotalPaid += it.Paid
		st.TotalOutstanding += it.Outstanding
	}
	return st
}

// DefaultStatement возвращает сводку, которую видит каждый студент.
func DefaultStatement() Statement {
	return NewStatement(
		[]FeeItem{
			{Head: "Tuition Fee", ToPay: 2500, Paid: 2500, Outstanding: 0, DueDate: "10-07-2024"},
			{Head: "Exam Fee", ToPay: 500, Paid: 0, Outstanding: 500, DueDate: "25-07-2024"},
			{Head: "Library Fee", ToPay: 100, Paid: 100, Outstanding: 0, DueDate: "10-07-2024"},
		},
		[]Transaction{
			{Date: "08-07-2024", Year: "2024-25", Semester: 3, Mode: "Card", Amount: 2600, Status: "Success", TxnID: "T2024070812345"},
			{Date: "15-01-2024", Year: "2023-24", Semester: 2, Mode: "UPI", Amount: 2600, Status: "Success", TxnID: "T2024011509876"},
		},
	)
}
