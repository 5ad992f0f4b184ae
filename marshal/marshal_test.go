package marshal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMixedWidths(t *testing.T) {
	enc := NewEnc(make([]byte, 16))
	enc.PutByte(0x7f)
	enc.Skip(3)
	enc.PutInt32(0xdeadbeef)
	enc.PutInt16(0xbeef)
	enc.PutBytes([]byte("ab"))
	b := enc.Finish()

	// little-endian on the wire
	assert.Equal(t, []byte{0x7f, 0, 0, 0, 0xef, 0xbe, 0xad, 0xde}, b[:8])

	dec := NewDec(b)
	assert.Equal(t, byte(0x7f), dec.GetByte())
	dec.Skip(3)
	assert.Equal(t, uint32(0xdeadbeef), dec.GetInt32())
	assert.Equal(t, uint16(0xbeef), dec.GetInt16())
	assert.Equal(t, []byte("ab"), dec.GetBytes(2))
}
