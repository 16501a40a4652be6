// internal/utils/binary/binary.go
package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const pubKeyLength = 32

// ErrShortBuffer is returned when a field cannot be read because the data ran out.
var ErrShortBuffer = errors.New("buffer too short")

// Writer accumulates little-endian encoded fields in the layouts used by
// native programs: fixed integers, borsh strings, borsh Option and C-style COption.
// The first failing write is remembered and all following writes are skipped.
type Writer struct {
	buf *bytes.Buffer
	enc *bin.Encoder
	err error
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	buf := new(bytes.Buffer)
	return &Writer{buf: buf, enc: bin.NewBinEncoder(buf)}
}

func (w *Writer) do(fn func() error) *Writer {
	if w.err == nil {
		w.err = fn()
	}
	return w
}

// U8 writes a single byte.
func (w *Writer) U8(v uint8) *Writer {
	return w.do(func() error { return w.enc.WriteUint8(v) })
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) *Writer {
	return w.do(func() error { return w.enc.WriteUint16(v, binary.LittleEndian) })
}

// U32 writes a little-endian uint32.
func (w *Writer) U32(v uint32) *Writer {
	return w.do(func() error { return w.enc.WriteUint32(v, binary.LittleEndian) })
}

// U64 writes a little-endian uint64.
func (w *Writer) U64(v uint64) *Writer {
	return w.do(func() error { return w.enc.WriteUint64(v, binary.LittleEndian) })
}

// Bool writes 0 or 1.
func (w *Writer) Bool(v bool) *Writer {
	return w.do(func() error { return w.enc.WriteBool(v) })
}

// Raw writes bytes without a length prefix.
func (w *Writer) Raw(b []byte) *Writer {
	return w.do(func() error { return w.enc.WriteBytes(b, false) })
}

// PubKey writes the 32 raw bytes of a public key.
func (w *Writer) PubKey(key solana.PublicKey) *Writer {
	return w.Raw(key[:])
}

// String writes a borsh string: u32 length followed by the UTF-8 bytes.
func (w *Writer) String(s string) *Writer {
	return w.U32(uint32(len(s))).Raw([]byte(s))
}

// PaddedString writes a borsh string right-padded with zero bytes to size.
func (w *Writer) PaddedString(s string, size int) *Writer {
	if len(s) > size {
		return w.do(func() error { return fmt.Errorf("string of %d bytes exceeds %d", len(s), size) })
	}
	return w.String(s + strings.Repeat("\x00", size-len(s)))
}

// OptionPubKey writes a borsh Option<Pubkey> (u8 tag).
func (w *Writer) OptionPubKey(key *solana.PublicKey) *Writer {
	if key == nil {
		return w.U8(0)
	}
	return w.U8(1).PubKey(*key)
}

// COptionPubKey writes a COption<Pubkey> as packed by the token program (u32 tag, always 36 bytes).
func (w *Writer) COptionPubKey(key *solana.PublicKey) *Writer {
	if key == nil {
		return w.U32(0).Raw(make([]byte, pubKeyLength))
	}
	return w.U32(1).PubKey(*key)
}

// COptionU64 writes a COption<u64> (u32 tag, always 12 bytes).
func (w *Writer) COptionU64(v *uint64) *Writer {
	if v == nil {
		return w.U32(0).U64(0)
	}
	return w.U32(1).U64(*v)
}

// Err returns the first write error, if any.
func (w *Writer) Err() error {
	return w.err
}

// Bytes returns the encoded data.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Reader decodes the fields written by Writer. Like Writer, it keeps the
// first error and returns zero values afterwards.
type Reader struct {
	dec *bin.Decoder
	err error
}

// NewReader creates a reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{dec: bin.NewBinDecoder(data)}
}

func (r *Reader) fail(err error) {
	if r.err == nil && err != nil {
		r.err = fmt.Errorf("%w: %v", ErrShortBuffer, err)
	}
}

// U8 reads a single byte.
func (r *Reader) U8() uint8 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint8()
	r.fail(err)
	return v
}

// U16 reads a little-endian uint16.
func (r *Reader) U16() uint16 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint16(binary.LittleEndian)
	r.fail(err)
	return v
}

// U32 reads a little-endian uint32.
func (r *Reader) U32() uint32 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint32(binary.LittleEndian)
	r.fail(err)
	return v
}

// U64 reads a little-endian uint64.
func (r *Reader) U64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(binary.LittleEndian)
	r.fail(err)
	return v
}

// Bool reads a boolean byte.
func (r *Reader) Bool() bool {
	if r.err != nil {
		return false
	}
	v, err := r.dec.ReadBool()
	r.fail(err)
	return v
}

// Raw reads n bytes.
func (r *Reader) Raw(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.dec.Remaining() {
		r.fail(fmt.Errorf("need %d bytes, have %d", n, r.dec.Remaining()))
		return nil
	}
	v, err := r.dec.ReadNBytes(n)
	r.fail(err)
	return v
}

// PubKey reads a 32 byte public key.
func (r *Reader) PubKey() solana.PublicKey {
	b := r.Raw(pubKeyLength)
	if b == nil {
		return solana.PublicKey{}
	}
	return solana.PublicKeyFromBytes(b)
}

// String reads a borsh string.
func (r *Reader) String() string {
	n := r.U32()
	return string(r.Raw(int(n)))
}

// TrimmedString reads a borsh string and strips the zero padding.
func (r *Reader) TrimmedString() string {
	return strings.TrimRight(r.String(), "\x00")
}

// OptionPubKey reads a borsh Option<Pubkey>.
func (r *Reader) OptionPubKey() *solana.PublicKey {
	if r.U8() == 0 || r.err != nil {
		return nil
	}
	key := r.PubKey()
	return &key
}

// COptionPubKey reads a 36 byte COption<Pubkey>.
func (r *Reader) COptionPubKey() *solana.PublicKey {
	tag := r.U32()
	key := r.PubKey()
	if tag == 0 || r.err != nil {
		return nil
	}
	return &key
}

// COptionU64 reads a 12 byte COption<u64>.
func (r *Reader) COptionU64() *uint64 {
	tag := r.U32()
	v := r.U64()
	if tag == 0 || r.err != nil {
		return nil
	}
	return &v
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return r.dec.Remaining()
}

// Err returns the first decode error, if any.
func (r *Reader) Err() error {
	return r.err
}
