package store

import (
	"encoding/binary"
	"fmt"
)

// Position lists are stored as delta-encoded uvarints. Positions are
// strictly increasing ordinals, so deltas stay small and most entries fit
// in one byte.

func encodePositions(positions []int) []byte {
	buf := make([]byte, 0, len(positions)+binary.MaxVarintLen64)
	buf = binary.AppendUvarint(buf, uint64(len(positions)))
	prev := 0
	for _, p := range positions {
		buf = binary.AppendUvarint(buf, uint64(p-prev))
		prev = p
	}
	return buf
}

func decodePositions(buf []byte) ([]int, error) {
	n, read := binary.Uvarint(buf)
	if read <= 0 {
		return nil, fmt.Errorf("positions blob: bad length header")
	}
	buf = buf[read:]

	positions := make([]int, 0, n)
	prev := 0
	for i := uint64(0); i < n; i++ {
		delta, read := binary.Uvarint(buf)
		if read <= 0 {
			return nil, fmt.Errorf("positions blob: truncated at entry %d", i)
		}
		buf = buf[read:]
		prev += int(delta)
		positions = append(positions, prev)
	}
	return positions, nil
}
