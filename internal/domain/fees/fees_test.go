package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultStatement(t *testing.T) {
	st := DefaultStatement()

	assert.Len(t, st.Summary, 3)
	assert.Equal(t, 3100, st.TotalToPay)
	assert.Equal(t, 2600, st.TotalPaid)
	assert.Equal(t, 500, st.TotalOutstanding)
	assert.True(t, st.HasOutstanding())

	assert.True(t, st.Summary[0].IsSettled())
	assert.False(t, st.Summary[1].IsSettled())

	ids := []string{st.Transactions[0].TxnID, st.Transactions[1].TxnID}
	assert.Equal(t, []string{"T2024070812345", "T2024011509876"}, ids)
}

func TestNewStatement_Empty(t *testing.T) {
	st := NewStatement(nil, nil)
	assert.False(t, st.HasOutstanding())
	assert.Zero(t, st.TotalToPay)
}
