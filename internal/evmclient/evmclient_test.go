package evmclient

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

type fakeDataError struct {
	msg  string
	data string
}

func (e *fakeDataError) Error() string          { return e.msg }
func (e *fakeDataError) ErrorData() interface{} { return e.data }

func TestUnpackRevertReasonExtractsStandardError(t *testing.T) {
	selector := crypto.Keccak256([]byte("Error(string)"))[:4]
	packed, err := abi.Arguments{{Type: mustType(t, "string")}}.Pack("insufficient balance")
	require.NoError(t, err)

	data := append(append([]byte{}, selector...), packed...)
	revertErr := &fakeDataError{msg: "execution reverted", data: "0x" + hexEncode(data)}

	reason, ok := UnpackRevertReason(revertErr)
	require.True(t, ok)
	require.Equal(t, "insufficient balance", reason)
}

func TestUnpackRevertReasonFalseWithoutData(t *testing.T) {
	_, ok := UnpackRevertReason(&fakeDataError{msg: "boom", data: ""})
	require.False(t, ok)
}

func mustType(t *testing.T, typ string) abi.Type {
	t.Helper()
	ty, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	return ty
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
