package parse

import "strings"

// Tags holds the IRCv3 tags of one line. Twitch never repeats a key, so the
// last occurrence wins.
type Tags map[string]string

// DecodeTags splits a tag block (without the leading '@') into key/value
// pairs. It never fails: a key without '=' gets an empty value and unknown
// keys are kept.
func DecodeTags(block string) Tags {
	tags := make(Tags, strings.Count(block, ";")+1)

	start := 0
	for i := 0; i <= len(block); i++ {
		if i < len(block) && block[i] != ';' {
			continue
		}

		tag := block[start:i]
		start = i + 1
		if tag == "" {
			continue
		}

		k, v, _ := strings.Cut(tag, "=")
		if k == "" {
			continue
		}
		tags[k] = unescapeTagValue(v)
	}

	return tags
}

func (t Tags) Get(key string) string {
	return t[key]
}

// Bool decodes a flag tag. Absent means false, "0" means false, anything else is true.
func (t Tags) Bool(key string) bool {
	v, ok := t[key]
	return ok && v != "0"
}

func unescapeTagValue(v string) string {
	if strings.IndexByte(v, '\\') == -1 {
		return v
	}

	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}

		i++
		if i == len(v) {
			break
		}

		switch v[i] {
		case 's':
			b.WriteByte(' ')
		case ':':
			b.WriteByte(';')
		case '\\':
			b.WriteByte('\\')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		default:
			b.WriteByte(v[i])
		}
	}
	return b.String()
}
