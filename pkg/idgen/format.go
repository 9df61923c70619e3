package idgen

import "strings"

// applyCase transforms the core payload. It runs before metadata is
// appended, so embedded fragments (hex device hashes, base64 geo tags) keep
// their own casing; the parser and the checksum engine rely on that ordering.
func applyCase(core string, c Case) string {
	switch c {
	case CaseUpper:
		return strings.ToUpper(core)
	case CaseLower:
		return strings.ToLower(core)
	}
	return core
}

// insertSeparators chunks content into runs of stride characters joined by
// sep. The last chunk may be shorter. A zero stride or empty separator
// disables chunking.
func insertSeparators(content, sep string, stride int) string {
	if sep == "" || stride <= 0 || len(content) <= stride {
		return content
	}
	var b strings.Builder
	b.Grow(len(content) + (len(content)/stride)*len(sep))
	for i := 0; i < len(content); i += stride {
		if i > 0 {
			b.WriteString(sep)
		}
		end := i + stride
		if end > len(content) {
			end = len(content)
		}
		b.WriteString(content[i:end])
	}
	return b.String()
}

// wrap frames content with the optional prefix and suffix, each joined by a
// single separator occurrence when one is configured.
func wrap(content, prefix, suffix, sep string) string {
	if prefix != "" {
		content = prefix + sep + content
	}
	if suffix != "" {
		content = content + sep + suffix
	}
	return content
}

// stripWrap is the left-inverse of wrap for the same configuration. It
// reports ok=false when the expected framing is absent.
func stripWrap(id, prefix, suffix, sep string) (content string, ok bool) {
	if prefix != "" {
		head := prefix + sep
		if !strings.HasPrefix(id, head) {
			return "", false
		}
		id = id[len(head):]
	}
	if suffix != "" {
		tail := sep + suffix
		if !strings.HasSuffix(id, tail) {
			return "", false
		}
		id = id[:len(id)-len(tail)]
	}
	return id, true
}

// stripSeparators is the exact left-inverse of insertSeparators: it removes
// only the separator occurrences at stride boundaries, so content is free to
// contain the separator characters (hex checksum blocks, base36 fragments).
// It reports the number of separators removed and ok=false when a boundary
// does not carry the expected separator.
func stripSeparators(body, sep string, stride int) (content string, count int, ok bool) {
	if sep == "" || stride <= 0 {
		return body, 0, true
	}
	var b strings.Builder
	b.Grow(len(body))
	for {
		if len(body) <= stride {
			b.WriteString(body)
			return b.String(), count, true
		}
		b.WriteString(body[:stride])
		body = body[stride:]
		if !strings.HasPrefix(body, sep) {
			return "", count, false
		}
		body = body[len(sep):]
		count++
		if len(body) == 0 {
			// Insertion never emits a trailing separator.
			return "", count, false
		}
	}
}
