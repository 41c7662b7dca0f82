package sources

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/sudorandom/event-viewer/pkg/eventview"
)

// RecordSize is the length of one binary event record:
// t uint64, x uint16, y uint16, p uint8 and three bytes of padding, all
// little-endian.
const RecordSize = 16

// PutRecord encodes e into b, which must be at least RecordSize long.
func PutRecord(b []byte, e eventview.Event) {
	binary.LittleEndian.PutUint64(b[0:8], e.T)
	binary.LittleEndian.PutUint16(b[8:10], e.X)
	binary.LittleEndian.PutUint16(b[10:12], e.Y)
	b[12] = e.Polarity
	b[13], b[14], b[15] = 0, 0, 0
}

// Record decodes one record from b.
func Record(b []byte) eventview.Event {
	return eventview.Event{
		T:        binary.LittleEndian.Uint64(b[0:8]),
		X:        binary.LittleEndian.Uint16(b[8:10]),
		Y:        binary.LittleEndian.Uint16(b[10:12]),
		Polarity: b[12],
	}
}

// EncodeRecords returns the binary encoding of events.
func EncodeRecords(events []eventview.Event) []byte {
	buf := make([]byte, len(events)*RecordSize)
	for i, e := range events {
		PutRecord(buf[i*RecordSize:], e)
	}
	return buf
}

// DecodeRecords appends the events encoded in b to dst. b must hold a
// whole number of records.
func DecodeRecords(dst []eventview.Event, b []byte) ([]eventview.Event, error) {
	if len(b)%RecordSize != 0 {
		return dst, fmt.Errorf("truncated record: %d trailing bytes", len(b)%RecordSize)
	}
	for off := 0; off < len(b); off += RecordSize {
		dst = append(dst, Record(b[off:]))
	}
	return dst, nil
}

// WriteBinary writes events to w in the binary record format.
func WriteBinary(w io.Writer, events []eventview.Event) error {
	bw := bufio.NewWriter(w)
	var rec [RecordSize]byte
	for _, e := range events {
		PutRecord(rec[:], e)
		if _, err := bw.Write(rec[:]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadBinary reads records until EOF. A trailing partial record is an
// error.
func ReadBinary(r io.Reader) ([]eventview.Event, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	var events []eventview.Event
	var rec [RecordSize]byte
	for {
		n, err := io.ReadFull(br, rec[:])
		switch {
		case err == nil:
			events = append(events, Record(rec[:]))
		case errors.Is(err, io.EOF):
			return events, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("record %d: truncated record (%d of %d bytes)", len(events), n, RecordSize)
		default:
			return nil, err
		}
	}
}
