package launcher

// SplitArgs splits a raw argument string on whitespace, honoring single
// and double quotes. Quotes group words but are not included in the
// output; an unterminated quote runs to the end of the string.
func SplitArgs(raw string) []string {
	var args []string
	var current []rune
	var quote rune

	for _, ch := range raw {
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				current = append(current, ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			if len(current) > 0 {
				args = append(args, string(current))
				current = current[:0]
			}
		default:
			current = append(current, ch)
		}
	}

	if len(current) > 0 {
		args = append(args, string(current))
	}

	return args
}
