//go:build js && wasm
// +build js,wasm

package main

import (
	"encoding/hex"
	"syscall/js"

	"ppmpad/protocol"
)

// Stream state for the page's Web Serial reader
var reader *protocol.BlockReader

func main() {
	reader = protocol.NewBlockReader(nil)

	// Export functions to JavaScript
	js.Global().Set("ppmpadWasm", js.ValueOf(map[string]interface{}{
		"feed":    js.FuncOf(feedWrapper),
		"stats":   js.FuncOf(statsWrapper),
		"reset":   js.FuncOf(resetWrapper),
		"crc16":   js.FuncOf(crc16Wrapper),
		"version": protocol.Version,
	}))

	// Keep the program running
	select {}
}

// feedWrapper pushes received bytes and returns the reports they completed
// Args: hexString (string)
// Returns: [{type: "state"|"ranges", ...}] or {error: string}
func feedWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeError("missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeError("invalid hex string: " + err.Error())
	}

	reports := []interface{}{}
	for len(data) > 0 {
		n := reader.Feed(data)
		data = data[n:]
		for {
			blk, ok := reader.Next()
			if !ok {
				break
			}
			reports = append(reports, reportObject(blk))
		}
		if n == 0 {
			// Buffer full of garbage; Next already resynchronised past it
			break
		}
	}
	return js.ValueOf(reports)
}

func reportObject(blk protocol.Block) map[string]interface{} {
	report, err := protocol.DecodeReport(blk.Payload)
	if err != nil {
		return map[string]interface{}{
			"type":     "error",
			"sequence": int(blk.Sequence),
			"error":    err.Error(),
		}
	}

	switch r := report.(type) {
	case *protocol.StateReport:
		axes := make([]interface{}, len(r.Axes))
		for i, v := range r.Axes {
			axes[i] = int(v)
		}
		buttons := make([]interface{}, protocol.ReportButtons)
		for i := range buttons {
			buttons[i] = r.Button(i)
		}
		pulses := make([]interface{}, len(r.Pulses))
		for i, v := range r.Pulses {
			pulses[i] = v
		}
		return map[string]interface{}{
			"type":        "state",
			"sequence":    int(blk.Sequence),
			"clock":       r.Clock,
			"signal":      r.Signal(),
			"inSync":      r.InSync(),
			"calibration": int(r.Calibration),
			"pattern":     int(r.Pattern),
			"axes":        axes,
			"buttons":     buttons,
			"pulses":      pulses,
			"edges":       r.Edges,
			"frames":      r.Frames,
			"resyncs":     r.ResyncRequests,
			"losses":      r.SignalLosses,
			"sendErrors":  r.SendErrors,
		}
	case *protocol.RangeReport:
		ranges := make([]interface{}, len(r.Ranges))
		for i, cr := range r.Ranges {
			ranges[i] = map[string]interface{}{"min": cr.Min, "max": cr.Max}
		}
		return map[string]interface{}{
			"type":     "ranges",
			"sequence": int(blk.Sequence),
			"ranges":   ranges,
			"accepted": r.Accepted,
			"rejected": r.Rejected,
		}
	}
	return map[string]interface{}{"type": "unknown", "sequence": int(blk.Sequence)}
}

// statsWrapper returns the stream error counters
func statsWrapper(this js.Value, args []js.Value) interface{} {
	s := reader.Stats()
	return js.ValueOf(map[string]interface{}{
		"blocks":      s.Blocks,
		"crcErrors":   s.CRCErrors,
		"frameErrors": s.FrameErrors,
		"dropped":     s.DroppedBytes,
		"seqGaps":     s.SeqGaps,
	})
}

// resetWrapper drops buffered bytes and counters, e.g. after reconnecting
func resetWrapper(this js.Value, args []js.Value) interface{} {
	reader = protocol.NewBlockReader(nil)
	return js.Undefined()
}

// crc16Wrapper calculates CRC16 checksum
// Args: hexString (string)
// Returns: number (uint16)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.CRC16(data)))
}

func makeError(msg string) js.Value {
	return js.ValueOf(map[string]interface{}{"error": msg})
}
