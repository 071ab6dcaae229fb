// Package protocol implements the framed telemetry link between the
// firmware and host tools.
//
// A block is
//
//	[len][0x10|seq][payload...][crc16 hi][crc16 lo][0x7E]
//
// where len counts the whole block and the CRC covers len, seq and payload.
// Payloads start with a VLQ message id followed by VLQ fields.
package protocol

// Version represents the telemetry protocol version
const Version = "0.1.0"

// Protocol constants
const (
	MessageMax = 512 // Scratch output buffer size

	BlockHeaderSize  = 2
	BlockTrailerSize = 3
	BlockLengthMin   = BlockHeaderSize + BlockTrailerSize
	BlockLengthMax   = 96
	BlockPositionLen = 0
	BlockPositionSeq = 1
	BlockTrailerCRC  = 3
	BlockTrailerSync = 1
	BlockValueSync   = 0x7E
	BlockDest        = 0x10

	// Block sequence masks
	BlockSeqMask = 0x0F
)

// Message ids
const (
	MsgState  = 1
	MsgRanges = 2
)
