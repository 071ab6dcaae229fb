package protocol

import (
	"errors"
	"io"
)

var (
	ErrBlockTooLarge = errors.New("block exceeds maximum length")
	ErrNoSpace       = errors.New("output buffer full")
	ErrNoData        = errors.New("no data available")
)

// BlockWriter frames payloads into blocks on an output buffer
type BlockWriter struct {
	output OutputBuffer
	seq    uint8
}

// NewBlockWriter creates a writer appending to output
func NewBlockWriter(output OutputBuffer) *BlockWriter {
	return &BlockWriter{output: output}
}

// WriteBlock frames whatever payload writes. If the result is larger than
// BlockLengthMax the block is rolled back and ErrBlockTooLarge returned.
func (w *BlockWriter) WriteBlock(payload func(output OutputBuffer)) error {
	cursor := w.output.CurPosition()

	// Length placeholder and sequence
	w.output.Output([]byte{0, BlockDest | (w.seq & BlockSeqMask)})
	payload(w.output)

	length := len(w.output.DataSince(cursor)) + BlockTrailerSize
	if length > BlockLengthMax {
		w.rollback(cursor)
		return ErrBlockTooLarge
	}
	w.output.Update(cursor, uint8(length))

	crc := CRC16(w.output.DataSince(cursor))
	w.output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		BlockValueSync,
	})
	if len(w.output.DataSince(cursor)) != length {
		// Scratch buffer truncated the block
		w.rollback(cursor)
		return ErrNoSpace
	}

	w.seq = (w.seq + 1) & BlockSeqMask
	return nil
}

// rollback drops everything written since cursor when the buffer supports it
func (w *BlockWriter) rollback(cursor int) {
	if s, ok := w.output.(*ScratchOutput); ok {
		s.pos = cursor
	}
}

// Block is one validated block received from the stream
type Block struct {
	Sequence uint8
	Payload  []byte
}

// ReaderStats counts stream problems seen by a BlockReader
type ReaderStats struct {
	Blocks       uint32
	CRCErrors    uint32
	FrameErrors  uint32 // bad length, destination or trailing sync
	DroppedBytes uint32
	SeqGaps      uint32
}

// BlockReader extracts blocks from an unreliable byte stream. On any framing
// error it drops bytes up to the next sync byte and carries on.
type BlockReader struct {
	src     io.Reader
	fifo    *FifoBuffer
	chunk   []byte
	synced  bool
	lastSeq int // -1 until the first block
	stats   ReaderStats
}

// NewBlockReader creates a reader over src. src may be nil when the caller
// pushes data with Feed.
func NewBlockReader(src io.Reader) *BlockReader {
	return &BlockReader{
		src:     src,
		fifo:    NewFifoBuffer(4 * BlockLengthMax),
		chunk:   make([]byte, BlockLengthMax),
		synced:  true,
		lastSeq: -1,
	}
}

// Feed pushes raw bytes into the reader and returns how many were accepted
func (r *BlockReader) Feed(data []byte) int {
	return r.fifo.Write(data)
}

// Stats returns the reader counters
func (r *BlockReader) Stats() ReaderStats {
	return r.stats
}

// Next returns the next complete block already buffered
func (r *BlockReader) Next() (Block, bool) {
	for {
		data := r.fifo.Data()
		if len(data) == 0 {
			return Block{}, false
		}

		if !r.synced {
			pos := indexSync(data)
			if pos < 0 {
				r.stats.DroppedBytes += uint32(len(data))
				r.fifo.Pop(len(data))
				return Block{}, false
			}
			r.stats.DroppedBytes += uint32(pos)
			r.fifo.Pop(pos + 1)
			r.synced = true
			continue
		}

		// Skip leading sync bytes
		if data[0] == BlockValueSync {
			r.fifo.Pop(1)
			continue
		}

		if len(data) < BlockLengthMin {
			return Block{}, false
		}

		length := int(data[BlockPositionLen])
		seq := data[BlockPositionSeq]
		if length < BlockLengthMin || length > BlockLengthMax || seq&^BlockSeqMask != BlockDest {
			r.desync(&r.stats.FrameErrors)
			continue
		}
		if len(data) < length {
			return Block{}, false
		}
		if data[length-BlockTrailerSync] != BlockValueSync {
			r.desync(&r.stats.FrameErrors)
			continue
		}

		want := uint16(data[length-BlockTrailerCRC])<<8 | uint16(data[length-BlockTrailerCRC+1])
		if CRC16(data[:length-BlockTrailerSize]) != want {
			r.desync(&r.stats.CRCErrors)
			continue
		}

		blk := Block{Sequence: seq & BlockSeqMask}
		blk.Payload = append([]byte(nil), data[BlockHeaderSize:length-BlockTrailerSize]...)
		r.fifo.Pop(length)

		if r.lastSeq >= 0 && int(blk.Sequence) != (r.lastSeq+1)&BlockSeqMask {
			r.stats.SeqGaps++
		}
		r.lastSeq = int(blk.Sequence)
		r.stats.Blocks++
		return blk, true
	}
}

// ReadBlock returns the next block, reading from the source as needed.
// A read that returns no bytes (serial read timeout) yields ErrNoData.
func (r *BlockReader) ReadBlock() (Block, error) {
	for {
		if blk, ok := r.Next(); ok {
			return blk, nil
		}
		if r.src == nil {
			return Block{}, io.EOF
		}

		free := r.fifo.Free()
		if free == 0 {
			// A full buffer without a valid block is garbage
			r.desync(&r.stats.FrameErrors)
			continue
		}
		buf := r.chunk
		if len(buf) > free {
			buf = buf[:free]
		}
		n, err := r.src.Read(buf)
		if n > 0 {
			r.fifo.Write(buf[:n])
		}
		if err != nil {
			return Block{}, err
		}
		if n == 0 {
			return Block{}, ErrNoData
		}
	}
}

func (r *BlockReader) desync(counter *uint32) {
	*counter++
	r.synced = false
	// The current length byte is known bad; never rescan it
	r.fifo.Pop(1)
	r.stats.DroppedBytes++
}

func indexSync(data []byte) int {
	for i, b := range data {
		if b == BlockValueSync {
			return i
		}
	}
	return -1
}
