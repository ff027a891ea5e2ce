package proposals

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBridgeCommandRoundTrip(t *testing.T) {
	cases := []BridgeCommand{
		NewExecuteProposalWithSignature([]byte{0x01, 0x02}, []byte{0xAA, 0xBB, 0xCC}),
		NewTransferOwnershipWithSignature([]byte{0x01, 0x02, 0x03}, 42, []byte{0xDE, 0xAD}),
		NewExecuteProposalWithSignature(nil, nil),
	}
	for _, cmd := range cases {
		b, err := cmd.Encode()
		require.NoError(t, err)

		got, err := DecodeBridgeCommand(b)
		require.NoError(t, err)
		require.Equal(t, cmd.Kind, got.Kind)
		require.Equal(t, nonNil(cmd.Data), got.Data)
		require.Equal(t, nonNil(cmd.Signature), got.Signature)
		require.Equal(t, nonNil(cmd.PublicKey), got.PublicKey)
		require.Equal(t, cmd.Nonce, got.Nonce)
	}
}

func TestDecodeBridgeCommandInvalid(t *testing.T) {
	_, err := DecodeBridgeCommand([]byte{0xFF, 0xFF})
	require.Error(t, err)
}
