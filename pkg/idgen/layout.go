package idgen

import "fmt"

// span locates one checksum block inside the final (post-insertion) string.
type span struct {
	offset int
	length int
}

// checksumSpans is the single source of truth for checksum placement. Both
// insertion and extraction derive their offsets from it, so the cumulative
// shift applied by left-to-right insertion can never diverge between the two
// directions.
//
// contentLen is the length of the core+metadata content before any block is
// inserted. Returned spans are ascending and refer to the final string.
func checksumSpans(contentLen int, ck ChecksumConfig) ([]span, error) {
	if !ck.Enabled {
		return nil, nil
	}
	spans := make([]span, 0, ck.Count)
	switch ck.Position {
	case PositionStart:
		for i := 0; i < ck.Count; i++ {
			spans = append(spans, span{offset: i * ck.Length, length: ck.Length})
		}
	case PositionMiddle:
		mid := contentLen / 2
		for i := 0; i < ck.Count; i++ {
			spans = append(spans, span{offset: mid + i*ck.Length, length: ck.Length})
		}
	case PositionEnd:
		for i := 0; i < ck.Count; i++ {
			spans = append(spans, span{offset: contentLen + i*ck.Length, length: ck.Length})
		}
	case PositionCustom:
		if len(ck.Offsets) != ck.Count {
			return nil, &ConfigError{Field: "checksum.offsets", Message: fmt.Sprintf("need %d offsets, got %d", ck.Count, len(ck.Offsets))}
		}
		for i, off := range ck.Offsets {
			if off < 0 || off > contentLen {
				return nil, &ConfigError{Field: "checksum.offsets", Message: fmt.Sprintf("offset %d out of range for content length %d", off, contentLen)}
			}
			// Each earlier insertion shifts this block right by one block
			// length.
			spans = append(spans, span{offset: off + i*ck.Length, length: ck.Length})
		}
	default:
		return nil, &ConfigError{Field: "checksum.position", Message: fmt.Sprintf("unknown position %q", ck.Position)}
	}
	return spans, nil
}

// spliceBlocks inserts blocks into content at the given final-string spans.
func spliceBlocks(content string, blocks []string, spans []span) (string, error) {
	if len(blocks) != len(spans) {
		return "", fmt.Errorf("idgen: %d blocks for %d spans", len(blocks), len(spans))
	}
	out := make([]byte, 0, len(content)+spanTotal(spans))
	cursor := 0 // position in content
	inserted := 0
	for i, sp := range spans {
		// Translate the final-string offset back to a content offset by
		// removing the length of everything already inserted.
		at := sp.offset - inserted
		if at < cursor || at > len(content) {
			return "", fmt.Errorf("idgen: checksum span %d at %d is out of order", i, sp.offset)
		}
		out = append(out, content[cursor:at]...)
		out = append(out, blocks[i]...)
		cursor = at
		inserted += sp.length
	}
	out = append(out, content[cursor:]...)
	return string(out), nil
}

// extractBlocks is the exact inverse of spliceBlocks: it cuts the spans back
// out of the final string, returning the block values and the remaining
// content.
func extractBlocks(final string, spans []span) (blocks []string, content string, err error) {
	out := make([]byte, 0, len(final))
	cursor := 0
	for i, sp := range spans {
		if sp.offset < cursor || sp.offset+sp.length > len(final) {
			return nil, "", fmt.Errorf("idgen: checksum span %d [%d:%d] does not fit identifier of length %d", i, sp.offset, sp.offset+sp.length, len(final))
		}
		out = append(out, final[cursor:sp.offset]...)
		blocks = append(blocks, final[sp.offset:sp.offset+sp.length])
		cursor = sp.offset + sp.length
	}
	out = append(out, final[cursor:]...)
	return blocks, string(out), nil
}

func spanTotal(spans []span) int {
	total := 0
	for _, sp := range spans {
		total += sp.length
	}
	return total
}
