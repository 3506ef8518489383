package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const recordFormatVersionCurrent = 1

var errFieldTooLong = errors.New("refresh record field too long")

// Encode serialises r as version | subject | role | tokenId | issuedAt | expiresAt,
// strings length-prefixed with one byte and times as big-endian int64.
func Encode(r *RefreshRecord) ([]byte, error) {
	if r == nil {
		return nil, errors.New("nil refresh record")
	}
	var buf bytes.Buffer
	buf.Grow(1 + 3 + len(r.Subject) + len(r.Role) + len(r.TokenID) + 16)

	buf.WriteByte(recordFormatVersionCurrent)
	for _, field := range []string{r.Subject, r.Role, r.TokenID} {
		if len(field) > 255 {
			return nil, errFieldTooLong
		}
		buf.WriteByte(byte(len(field)))
		buf.WriteString(field)
	}

	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a record produced by [Encode].
func Decode(data []byte) (*RefreshRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent {
		return nil, errors.New("invalid refresh record version")
	}

	r := &RefreshRecord{}
	for _, dst := range []*string{&r.Subject, &r.Role, &r.TokenID} {
		n, err := reader.ReadByte()
		if err != nil {
			return nil, err
		}
		field := make([]byte, n)
		if _, err := io.ReadFull(reader, field); err != nil {
			return nil, err
		}
		*dst = string(field)
	}

	if err := binary.Read(reader, binary.BigEndian, &r.IssuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &r.ExpiresAt); err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in refresh record")
	}

	return r, nil
}
