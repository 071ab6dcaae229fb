package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func writeBlocks(t *testing.T, payloads ...[]byte) []byte {
	t.Helper()
	out := NewScratchOutput(MessageMax)
	w := NewBlockWriter(out)
	for _, p := range payloads {
		if err := w.WriteBlock(func(o OutputBuffer) { o.Output(p) }); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}
	}
	return append([]byte(nil), out.Result()...)
}

func TestBlockLayout(t *testing.T) {
	raw := writeBlocks(t, []byte{0x01, 0x02})

	if len(raw) != 7 {
		t.Fatalf("Expected 7 byte block, got %d: %v", len(raw), raw)
	}
	if raw[BlockPositionLen] != 7 {
		t.Errorf("Length byte = %d, expected 7", raw[BlockPositionLen])
	}
	if raw[BlockPositionSeq] != BlockDest {
		t.Errorf("Sequence byte = 0x%02X, expected 0x%02X", raw[BlockPositionSeq], BlockDest)
	}
	crc := CRC16(raw[:4])
	if raw[4] != byte(crc>>8) || raw[5] != byte(crc) {
		t.Errorf("CRC bytes = %02X%02X, expected %04X", raw[4], raw[5], crc)
	}
	if raw[6] != BlockValueSync {
		t.Errorf("Trailer = 0x%02X, expected sync", raw[6])
	}
}

func TestBlockRoundTrip(t *testing.T) {
	payloads := [][]byte{{0x01}, {0x02, 0x03}, bytes.Repeat([]byte{0x55}, BlockLengthMax-BlockLengthMin)}
	reader := NewBlockReader(bytes.NewReader(writeBlocks(t, payloads...)))

	for i, want := range payloads {
		blk, err := reader.ReadBlock()
		if err != nil {
			t.Fatalf("Block %d: %v", i, err)
		}
		if blk.Sequence != uint8(i) {
			t.Errorf("Block %d: sequence %d", i, blk.Sequence)
		}
		if !bytes.Equal(blk.Payload, want) {
			t.Errorf("Block %d: payload %v, expected %v", i, blk.Payload, want)
		}
	}

	if _, err := reader.ReadBlock(); err != io.EOF {
		t.Errorf("Expected io.EOF at end of stream, got %v", err)
	}
	if stats := reader.Stats(); stats.Blocks != 3 || stats.SeqGaps != 0 || stats.DroppedBytes != 0 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestBlockTooLarge(t *testing.T) {
	out := NewScratchOutput(MessageMax)
	w := NewBlockWriter(out)

	big := make([]byte, BlockLengthMax)
	err := w.WriteBlock(func(o OutputBuffer) { o.Output(big) })
	if !errors.Is(err, ErrBlockTooLarge) {
		t.Fatalf("Expected ErrBlockTooLarge, got %v", err)
	}
	if out.CurPosition() != 0 {
		t.Errorf("Rejected block left %d bytes behind", out.CurPosition())
	}

	// The sequence number is not consumed
	if err := w.WriteBlock(func(o OutputBuffer) { o.Output([]byte{1}) }); err != nil {
		t.Fatal(err)
	}
	if out.Result()[BlockPositionSeq] != BlockDest {
		t.Errorf("Expected sequence 0 after rejected block, got 0x%02X", out.Result()[BlockPositionSeq])
	}
}

func TestBlockNoSpace(t *testing.T) {
	out := NewScratchOutput(8)
	w := NewBlockWriter(out)
	if err := w.WriteBlock(func(o OutputBuffer) { o.Output([]byte{1, 2, 3, 4}) }); !errors.Is(err, ErrNoSpace) {
		t.Fatalf("Expected ErrNoSpace, got %v", err)
	}
	if out.CurPosition() != 0 {
		t.Errorf("Truncated block left %d bytes behind", out.CurPosition())
	}
}

func TestBlockReaderResyncsAfterGarbage(t *testing.T) {
	good := writeBlocks(t, []byte{0x0A}, []byte{0x0B})
	first, second := good[:6], good[6:]

	var stream []byte
	stream = append(stream, 0x13, 0x99, 0x00, BlockValueSync) // line noise, then the tail of a lost block
	stream = append(stream, first...)
	stream = append(stream, 0x30, 0x31, BlockValueSync) // junk ending in a sync byte
	stream = append(stream, second...)

	reader := NewBlockReader(nil)
	reader.Feed(stream)

	var got [][]byte
	for {
		blk, ok := reader.Next()
		if !ok {
			break
		}
		got = append(got, blk.Payload)
	}

	if len(got) != 2 || got[0][0] != 0x0A || got[1][0] != 0x0B {
		t.Fatalf("Expected both payloads after garbage, got %v", got)
	}
	if reader.Stats().FrameErrors == 0 || reader.Stats().DroppedBytes == 0 {
		t.Errorf("Garbage not accounted: %+v", reader.Stats())
	}
}

func TestBlockReaderCRCError(t *testing.T) {
	raw := writeBlocks(t, []byte{0x01, 0x02}, []byte{0x03})
	raw[2] ^= 0xFF // corrupt the first payload

	reader := NewBlockReader(nil)
	reader.Feed(raw)

	blk, ok := reader.Next()
	if !ok {
		t.Fatal("Expected the second block to survive")
	}
	if !bytes.Equal(blk.Payload, []byte{0x03}) {
		t.Errorf("Expected payload [3], got %v", blk.Payload)
	}
	if reader.Stats().CRCErrors != 1 {
		t.Errorf("Expected 1 CRC error, got %d", reader.Stats().CRCErrors)
	}
}

func TestBlockReaderSequenceGap(t *testing.T) {
	raw := writeBlocks(t, []byte{1}, []byte{2}, []byte{3})
	// Drop the middle block (each block is 6 bytes)
	raw = append(raw[:6:6], raw[12:]...)

	reader := NewBlockReader(bytes.NewReader(raw))
	for i := 0; i < 2; i++ {
		if _, err := reader.ReadBlock(); err != nil {
			t.Fatal(err)
		}
	}
	if reader.Stats().SeqGaps != 1 {
		t.Errorf("Expected 1 sequence gap, got %d", reader.Stats().SeqGaps)
	}
}

func TestBlockReaderPartialBlock(t *testing.T) {
	raw := writeBlocks(t, []byte{0x42})
	reader := NewBlockReader(nil)

	reader.Feed(raw[:3])
	if _, ok := reader.Next(); ok {
		t.Fatal("Block returned before it was complete")
	}
	reader.Feed(raw[3:])
	blk, ok := reader.Next()
	if !ok || blk.Payload[0] != 0x42 {
		t.Fatalf("Expected payload 0x42, got %v (ok=%v)", blk.Payload, ok)
	}
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, nil }

func TestBlockReaderTimeout(t *testing.T) {
	reader := NewBlockReader(emptyReader{})
	if _, err := reader.ReadBlock(); !errors.Is(err, ErrNoData) {
		t.Errorf("Expected ErrNoData, got %v", err)
	}
}
