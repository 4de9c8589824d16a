package core

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ObjType is the in-use flag of an xref record.
type ObjType byte

const (
	// Free marks a free entry; its offset is the next free object number.
	Free ObjType = 'f'
	// InUse marks an entry pointing at an object in the file body.
	InUse ObjType = 'n'
)

// ParseObjType decodes the single-character type token of an xref record.
func ParseObjType(tok string) (ObjType, error) {
	switch tok {
	case "f":
		return Free, nil
	case "n":
		return InUse, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidObjType, tok)
	}
}

// String returns "free" or "in use".
func (t ObjType) String() string {
	switch t {
	case Free:
		return "free"
	case InUse:
		return "in use"
	default:
		return fmt.Sprintf("ObjType(%d)", byte(t))
	}
}

// MarshalText encodes the type as its xref token ("f" or "n").
func (t ObjType) MarshalText() ([]byte, error) {
	if t != Free && t != InUse {
		return nil, fmt.Errorf("%w: %d", ErrInvalidObjType, byte(t))
	}
	return []byte{byte(t)}, nil
}

// UnmarshalText decodes "f" or "n".
func (t *ObjType) UnmarshalText(b []byte) error {
	v, err := ParseObjType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// XRefRecord is a single cross-reference entry
type XRefRecord struct {
	Offset     uint64  `json:"offset"`     // Byte offset of the object, or next free object number if Free
	Generation uint64  `json:"generation"` // Generation number
	Type       ObjType `json:"type"`
}

// InUse reports whether the record points at a live object.
func (r XRefRecord) InUse() bool {
	return r.Type == InUse
}

// XRefTable is a decoded xref subsection. Records[i] describes object First+i,
// and len(Records) always equals the count declared in the subsection header.
type XRefTable struct {
	First   uint64       `json:"first"`
	Records []XRefRecord `json:"records"`
}

// Len returns the number of records.
func (t *XRefTable) Len() int {
	return len(t.Records)
}

// Lookup returns the record for an object number.
func (t *XRefTable) Lookup(objNum uint64) (XRefRecord, bool) {
	if objNum < t.First || objNum-t.First >= uint64(len(t.Records)) {
		return XRefRecord{}, false
	}
	return t.Records[objNum-t.First], true
}

// Counts returns how many records are in use and how many are free.
func (t *XRefTable) Counts() (inUse, free int) {
	for _, r := range t.Records {
		if r.InUse() {
			inUse++
		} else {
			free++
		}
	}
	return inUse, free
}

// minRecordLen is the shortest well-formed record line: "0 0 n".
const minRecordLen = 5

// DecodeXRef decodes the xref table starting at offset:
//
//	xref
//	0 3
//	0000000000 65535 f
//	0000000017 00000 n
//	0000000100 00000 n
//
// Exactly the declared number of records must follow the subsection header.
// Any deviation fails the whole decode; a partial table is never returned.
// Only the first subsection is read.
func DecodeXRef(src Source, offset uint64) (*XRefTable, error) {
	size := src.Size()
	if offset >= uint64(size) {
		return nil, newError("decode", int64(size), ErrMalformedHeader,
			fmt.Errorf("offset %d beyond end of file (%d bytes)", offset, size))
	}

	d := &xrefDecoder{
		r:   bufio.NewReader(io.NewSectionReader(src, int64(offset), size-int64(offset))),
		pos: int64(offset),
	}

	if err := d.keyword(); err != nil {
		return nil, err
	}
	first, count, err := d.subsectionHeader()
	if err != nil {
		return nil, err
	}

	// Don't trust count for the allocation; a corrupt header can claim billions.
	hint := count
	if maxRecords := uint64(size-d.pos)/minRecordLen + 1; hint > maxRecords {
		hint = maxRecords
	}

	table := &XRefTable{
		First:   first,
		Records: make([]XRefRecord, 0, hint),
	}
	for i := uint64(0); i < count; i++ {
		rec, err := d.record(i, count)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

// xrefDecoder reads an xref table forward and tracks the absolute offset of
// the next unread byte for error reporting.
type xrefDecoder struct {
	r   *bufio.Reader
	pos int64
}

// keyword consumes optional leading whitespace, the "xref" keyword and the
// line break after it.
func (d *xrefDecoder) keyword() error {
	if err := d.skip(isPDFSpace); err != nil {
		return err
	}

	at := d.pos
	kw := make([]byte, 4)
	n, err := io.ReadFull(d.r, kw)
	d.pos += int64(n)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return newError("decode", at, ErrMalformedHeader, fmt.Errorf("expected %q: %w", "xref", io.ErrUnexpectedEOF))
	}
	if err != nil {
		return newError("decode", at, ErrIO, err)
	}
	if string(kw) != "xref" {
		return newError("decode", at, ErrMalformedHeader, fmt.Errorf("expected %q, got %q", "xref", kw))
	}

	// The keyword must end at whitespace or the end of input.
	next, err := d.r.Peek(1)
	if err != nil && err != io.EOF {
		return newError("decode", d.pos, ErrIO, err)
	}
	if len(next) == 1 && !isPDFSpace(next[0]) {
		return newError("decode", at, ErrMalformedHeader, fmt.Errorf("expected %q, got %q", "xref", string(kw)+string(next)))
	}

	if err := d.skip(isBlank); err != nil {
		return err
	}
	return d.skip(isEOL)
}

// subsectionHeader reads the "start count" line.
func (d *xrefDecoder) subsectionHeader() (first, count uint64, err error) {
	at := d.pos
	line, err := d.readLine()
	if err == io.EOF {
		return 0, 0, newError("decode", at, ErrMissingCount, io.ErrUnexpectedEOF)
	}
	if err != nil {
		return 0, 0, err
	}

	parts := strings.Fields(line)
	if len(parts) < 2 {
		return 0, 0, newError("decode", at, ErrMissingCount, fmt.Errorf("subsection header %q", line))
	}
	if len(parts) > 2 {
		return 0, 0, newError("decode", at, ErrMalformedHeader, fmt.Errorf("subsection header %q", line))
	}

	first, err = strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, newError("decode", at, ErrMalformedHeader, fmt.Errorf("invalid first object number: %w", err))
	}
	count, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, newError("decode", at, ErrMissingCount, fmt.Errorf("invalid count: %w", err))
	}
	return first, count, nil
}

// record reads the i-th of count record lines.
func (d *xrefDecoder) record(i, count uint64) (XRefRecord, error) {
	at := d.pos
	line, err := d.readLine()
	if err == io.EOF {
		return XRefRecord{}, newError("decode", at, ErrMalformedRecord,
			fmt.Errorf("record %d of %d: %w", i, count, io.ErrUnexpectedEOF))
	}
	if err != nil {
		return XRefRecord{}, err
	}

	rec, err := parseRecord(line)
	if err != nil {
		return XRefRecord{}, newError("decode", at, ErrMalformedRecord, fmt.Errorf("record %d of %d: %w", i, count, err))
	}
	return rec, nil
}

// parseRecord parses "nnnnnnnnnn ggggg n". Fields are split on whitespace, so
// the 20-byte fixed layout and its trailing space are not required.
func parseRecord(line string) (XRefRecord, error) {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return XRefRecord{}, fmt.Errorf("want 3 fields, got %d in %q", len(parts), line)
	}

	offset, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return XRefRecord{}, fmt.Errorf("invalid offset %q: %w", parts[0], err)
	}
	generation, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return XRefRecord{}, fmt.Errorf("invalid generation %q: %w", parts[1], err)
	}
	typ, err := ParseObjType(parts[2])
	if err != nil {
		return XRefRecord{}, err
	}

	return XRefRecord{
		Offset:     offset,
		Generation: generation,
		Type:       typ,
	}, nil
}

// readLine reads up to the next LF, CR or CRLF. It returns io.EOF only when
// no bytes at all were left.
func (d *xrefDecoder) readLine() (string, error) {
	var sb strings.Builder
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			if sb.Len() == 0 {
				return "", io.EOF
			}
			return sb.String(), nil
		}
		if err != nil {
			return "", newError("decode", d.pos, ErrIO, err)
		}
		d.pos++

		switch c {
		case '\n':
			return sb.String(), nil
		case '\r':
			next, err := d.r.ReadByte()
			switch {
			case err == nil && next == '\n':
				d.pos++
			case err == nil:
				_ = d.r.UnreadByte()
			case err != io.EOF:
				return "", newError("decode", d.pos, ErrIO, err)
			}
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}
}

// skip consumes bytes while match holds.
func (d *xrefDecoder) skip(match func(byte) bool) error {
	for {
		c, err := d.r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return newError("decode", d.pos, ErrIO, err)
		}
		if !match(c) {
			return d.r.UnreadByte()
		}
		d.pos++
	}
}

// isPDFSpace reports the six PDF whitespace characters.
func isPDFSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
