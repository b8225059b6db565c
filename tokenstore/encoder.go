package tokenstore

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"time"
)

const (
	recordFormatVersionCurrent = 1

	flagOIDC byte = 1 << 0
)

// ErrCorrupt is returned by Decode for truncated or unknown records.
var ErrCorrupt = errors.New("token record corrupt")

// Encode serializes rec as
// version(1) | flags(1) | savedAt unix nanos(8) | tokenLen(4) | token.
func Encode(rec Record) ([]byte, error) {
	if uint64(len(rec.Token)) > math.MaxUint32 {
		return nil, errors.New("token too long")
	}

	var buf bytes.Buffer
	buf.Grow(14 + len(rec.Token))

	buf.WriteByte(recordFormatVersionCurrent)

	var flags byte
	if rec.OIDC {
		flags |= flagOIDC
	}
	buf.WriteByte(flags)

	var savedAt int64
	if !rec.SavedAt.IsZero() {
		savedAt = rec.SavedAt.UnixNano()
	}
	if err := binary.Write(&buf, binary.BigEndian, savedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint32(len(rec.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(rec.Token)

	return buf.Bytes(), nil
}

// Decode parses a record written by Encode.
func Decode(data []byte) (Record, error) {
	r := bytes.NewReader(data)

	version, err := r.ReadByte()
	if err != nil {
		return Record{}, ErrCorrupt
	}
	if version != recordFormatVersionCurrent {
		return Record{}, ErrCorrupt
	}

	flags, err := r.ReadByte()
	if err != nil {
		return Record{}, ErrCorrupt
	}

	var savedAt int64
	if err := binary.Read(r, binary.BigEndian, &savedAt); err != nil {
		return Record{}, ErrCorrupt
	}

	var tokenLen uint32
	if err := binary.Read(r, binary.BigEndian, &tokenLen); err != nil {
		return Record{}, ErrCorrupt
	}
	if int64(tokenLen) != int64(r.Len()) {
		return Record{}, ErrCorrupt
	}

	tok := make([]byte, tokenLen)
	if _, err := io.ReadFull(r, tok); err != nil {
		return Record{}, ErrCorrupt
	}

	rec := Record{
		Token: string(tok),
		OIDC:  flags&flagOIDC != 0,
	}
	if savedAt != 0 {
		rec.SavedAt = time.Unix(0, savedAt)
	}
	return rec, nil
}
